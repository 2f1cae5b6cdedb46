package cmd_test

import (
	"testing"

	cmd "github.com/rohmanhakim/docs-crawler/internal/cli"
)

func TestNewCrawlerCommand_AcceptsUpToTwoPositionalArgs(t *testing.T) {
	c := cmd.NewCrawlerCommand()
	if err := c.Args(c, []string{"config.json", "links.txt", "extra"}); err == nil {
		t.Fatalf("expected an error for a third positional argument")
	}
	if err := c.Args(c, []string{"config.json", "links.txt"}); err != nil {
		t.Fatalf("expected two positional args to be accepted, got %v", err)
	}
	if err := c.Args(c, nil); err != nil {
		t.Fatalf("expected zero positional args to be accepted, got %v", err)
	}
}

func TestNewSearcherCommand_RequiresExactlyTwoArgs(t *testing.T) {
	c := cmd.NewSearcherCommand()
	if err := c.Args(c, []string{"db.sqlite"}); err == nil {
		t.Fatalf("expected an error for a single positional argument")
	}
	if err := c.Args(c, []string{"db.sqlite", "query", "extra"}); err == nil {
		t.Fatalf("expected an error for a third positional argument")
	}
	if err := c.Args(c, []string{"db.sqlite", "query"}); err != nil {
		t.Fatalf("expected exactly two positional args to be accepted, got %v", err)
	}
}
