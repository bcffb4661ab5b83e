package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pep299/study-planner/internal/model"
	"github.com/pep299/study-planner/internal/pipeline"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(svc *pipeline.Service, out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "study-planner",
		Usage:   "Research a topic and generate a week-by-week study plan",
		Version: Version,
		Writer:  out,
		Commands: []*cli.Command{
			planCmd(svc),
			researchCmd(svc),
			translateCmd(svc),
			trendingCmd(svc),
		},
	}
	// Return errors to the caller instead of exiting
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// planCmd creates the plan command.
func planCmd(svc *pipeline.Service) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Generate a study plan",
		ArgsUsage: "[topic]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Topic to study"},
			&cli.IntFlag{Name: "weeks", Aliases: []string{"w"}, Value: model.DefaultWeeks, Usage: "Plan duration in weeks (1-52)"},
			&cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Usage: "Research depth (1-5, 0 uses the configured default)"},
			&cli.StringFlag{Name: "style", Usage: "Learning style"},
			&cli.StringFlag{Name: "prior", Usage: "Prior knowledge"},
			&cli.StringFlag{Name: "goals", Usage: "Comma-separated learning goals"},
			&cli.BoolFlag{Name: "generate-goals", Usage: "Ask the provider for learning goals"},
			&cli.BoolFlag{Name: "no-resources", Usage: "Omit the resource list"},
			&cli.StringFlag{Name: "context", Usage: "Additional context for the plan"},
			&cli.StringFlag{Name: "lang", Value: model.DefaultLang, Usage: "Summary language"},
		},
		Action: func(c *cli.Context) error {
			opts := model.DefaultOptions()
			opts.Topic = topicArg(c)
			opts.DurationWeeks = c.Int("weeks")
			opts.DepthLevel = c.Int("depth")
			opts.LearningStyle = c.String("style")
			opts.PriorKnowledge = c.String("prior")
			opts.Goals = parseList(c.String("goals"))
			opts.GenerateGoals = c.Bool("generate-goals")
			opts.IncludeResources = !c.Bool("no-resources")
			opts.AdditionalContext = c.String("context")
			opts.Language = c.String("lang")

			result, err := svc.Generate(c.Context, opts)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, result)
		},
	}
}

// researchCmd creates the research command.
func researchCmd(svc *pipeline.Service) *cli.Command {
	return &cli.Command{
		Name:      "research",
		Usage:     "Search the web for a topic and print the findings",
		ArgsUsage: "[topic]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Topic to research"},
			&cli.IntFlag{Name: "depth", Aliases: []string{"d"}, Usage: "Research depth (1-5)"},
		},
		Action: func(c *cli.Context) error {
			bundle, err := svc.Research(c.Context, topicArg(c), c.Int("depth"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, bundle)
		},
	}
}

// translateCmd creates the translate command.
func translateCmd(svc *pipeline.Service) *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Translate text with the configured provider",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Required: true, Usage: "Target language"},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			translated, err := svc.Translate(c.Context, text, c.String("lang"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, map[string]string{"translated_text": translated})
		},
	}
}

// trendingCmd creates the trending command.
func trendingCmd(svc *pipeline.Service) *cli.Command {
	return &cli.Command{
		Name:  "trending",
		Usage: "List suggested topics",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, svc.TrendingTopics())
		},
	}
}

// topicArg prefers the --topic flag over positional arguments.
func topicArg(c *cli.Context) string {
	if t := c.String("topic"); t != "" {
		return t
	}
	return strings.Join(c.Args().Slice(), " ")
}

// outputJSON writes indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return cli.Exit("invalid "+verr.Field+": "+verr.Message, 2)
	}
	return cli.Exit(err.Error(), 1)
}

// parseList splits a comma-separated flag value.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			items = append(items, t)
		}
	}
	return items
}
