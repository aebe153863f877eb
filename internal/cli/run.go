package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"exam-runner/internal/app"
	"exam-runner/internal/config"
	"exam-runner/internal/domain"
	"exam-runner/internal/gateway"
	fileledger "exam-runner/internal/infra/file"
	"exam-runner/internal/infra/memory"
	redisledger "exam-runner/internal/infra/redis"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewRunCmd builds the CLI subcommand that runs one interactive sitting in
// the terminal. The terminal loop is presentation glue only; all session
// rules live in the app package.
func NewRunCmd(configPath, endpoint *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one exam sitting in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSitting(cmd.Context(), *configPath, *endpoint, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runSitting(ctx context.Context, configPath, endpointFlag string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	endpointURL := endpointFlag
	if endpointURL == "" {
		endpointURL = cfg.Endpoint.URL
	}
	gw, err := gateway.New(endpointURL,
		gateway.WithAttemptTimeout(config.Duration(cfg.Endpoint.AttemptTimeout, 15*time.Second)))
	if err != nil {
		return err
	}

	questions := memory.NewQuestionCache(gw, config.Duration(cfg.Endpoint.CacheTTL, 10*time.Minute))
	coordinator := app.NewCoordinator(questions, gw, buildLedger(cfg), nil)

	reader := bufio.NewReader(in)

	participant, err := promptParticipant(reader, out)
	if err != nil {
		return err
	}
	if err := coordinator.Register(ctx, participant); err != nil {
		if errors.Is(err, domain.ErrAlreadyCompleted) {
			fmt.Fprintln(out, "This email has already been used to take the exam.")
			return nil
		}
		return err
	}

	if err := coordinator.Begin(ctx); err != nil {
		return err
	}

	session := coordinator.Session()
	fmt.Fprintf(out, "\n%s, your exam has %d questions. Answer each question with A-D.\n",
		participant.Name, session.Length())

	for session.State() == app.StateInProgress {
		if err := showQuestion(session, out); err != nil {
			return err
		}
		if err := readAnswer(reader, out, session); err != nil {
			return err
		}

		last := session.Position() == session.Length()-1
		if !last {
			if err := session.Advance(); err != nil {
				if errors.Is(err, domain.ErrMustAnswerFirst) {
					fmt.Fprintln(out, "You must choose an answer before moving on.")
					continue
				}
				return err
			}
			continue
		}

		result, submitted, err := coordinator.Finish(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrMustAnswerFirst) {
				fmt.Fprintln(out, "You must choose an answer before finishing.")
				continue
			}
			return err
		}
		printResult(out, result, submitted)
	}
	return nil
}

func promptParticipant(reader *bufio.Reader, out io.Writer) (domain.Participant, error) {
	var p domain.Participant
	var err error
	if p.Name, err = prompt(reader, out, "Name", true); err != nil {
		return p, err
	}
	if p.Email, err = prompt(reader, out, "Email", true); err != nil {
		return p, err
	}
	if p.Age, err = prompt(reader, out, "Age (optional)", false); err != nil {
		return p, err
	}
	if p.Grade, err = prompt(reader, out, "Grade", true); err != nil {
		return p, err
	}
	return p, nil
}

func prompt(reader *bufio.Reader, out io.Writer, label string, required bool) (string, error) {
	for {
		fmt.Fprintf(out, "%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		value := strings.TrimSpace(line)
		if value == "" && required {
			fmt.Fprintln(out, "This field is required.")
			continue
		}
		return value, nil
	}
}

func showQuestion(session *app.ExamSession, out io.Writer) error {
	q, err := session.CurrentQuestion()
	if err != nil {
		return err
	}
	options, err := session.DisplayOptions()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nQuestion %d of %d: %s\n", session.Position()+1, session.Length(), q.Text)
	for _, opt := range options {
		fmt.Fprintf(out, "  %s. %s\n", opt.Label, opt.Text)
	}
	return nil
}

func readAnswer(reader *bufio.Reader, out io.Writer, session *app.ExamSession) error {
	for {
		fmt.Fprint(out, "Your answer: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return err
		}
		label := strings.ToUpper(strings.TrimSpace(line))
		if label == "" {
			// No selection; the advance/finish guard will surface the warning.
			return nil
		}
		if err := session.SelectAnswer(session.Position(), label); err != nil {
			if errors.Is(err, domain.ErrInvalidOption) {
				fmt.Fprintln(out, "Please answer with A, B, C, or D.")
				continue
			}
			return err
		}
		return nil
	}
}

func printResult(out io.Writer, result domain.SessionResult, submitted bool) {
	fmt.Fprintf(out, "\nScore: %d/%d (%d%%): %d correct, %d incorrect\n",
		result.CorrectCount, result.ValidCount, result.Percentage,
		result.CorrectCount, result.IncorrectCount)
	if !submitted {
		fmt.Fprintln(out, "Could not reach the scoring endpoint; your result was kept locally.")
	}
}

// buildLedger picks the history backend: Redis when configured, otherwise a
// JSON file (with a sensible default path).
func buildLedger(cfg config.Config) app.HistoryLedger {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisledger.NewLedger(client, config.Duration(cfg.Redis.TTL, 0))
	}
	path := cfg.History.Path
	if path == "" {
		path = "exam-history.json"
	}
	return fileledger.NewLedger(path)
}
