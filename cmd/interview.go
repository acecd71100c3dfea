package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/client"
	"github.com/spigell/mock-interviewer/internal/evaluator"
	"github.com/spigell/mock-interviewer/internal/interview"
	"github.com/spigell/mock-interviewer/internal/logger"
	"github.com/spigell/mock-interviewer/internal/report"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	PromptContinue = "Next question"
	PromptQuit     = "Quit"
)

var errQuit = errors.New("quit requested")

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	questionText = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706"))
	badStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7C3AED")).Padding(0, 1)
)

// interviewBackend runs a session either in process or against a server.
type interviewBackend interface {
	Start(ctx context.Context, req interview.StartRequest) (*interview.Session, error)
	CurrentQuestion(ctx context.Context, id string) (*bank.Question, error)
	Submit(ctx context.Context, id string, req interview.SubmitRequest) (*interview.SubmitResult, error)
	Report(ctx context.Context, id string) (*report.Report, error)
}

type localBackend struct {
	svc *interview.Service
}

func (b localBackend) Start(ctx context.Context, req interview.StartRequest) (*interview.Session, error) {
	return b.svc.Start(ctx, req)
}

func (b localBackend) CurrentQuestion(_ context.Context, id string) (*bank.Question, error) {
	return b.svc.CurrentQuestion(id)
}

func (b localBackend) Submit(ctx context.Context, id string, req interview.SubmitRequest) (*interview.SubmitResult, error) {
	return b.svc.Submit(ctx, id, req)
}

func (b localBackend) Report(_ context.Context, id string) (*report.Report, error) {
	return b.svc.Report(id)
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive mock interview in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("server", "s", "", "base URL of a running mock-interviewer server (default is in-process)")
	interviewCmd.Flags().StringP("role", "r", "", "role to interview for (prompted when empty)")
	interviewCmd.Flags().IntP("questions", "n", 0, "number of questions (default is interview.question-count)")
	interviewCmd.Flags().StringToString("candidate", nil, "candidate details, e.g. --candidate name=Ann,level=junior")
}

func runInterview(cmd *cobra.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("interview needs an interactive terminal, use the serve command for programmatic access")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		log.Error("getting a config", zap.Error(err))
		return err
	}

	var backend interviewBackend
	serverURL, _ := cmd.Flags().GetString("server")
	if serverURL != "" {
		log.Info("using remote interview server", zap.String("server", serverURL))
		backend = client.New(log, serverURL)
	} else {
		d, err := buildDeps(ctx, config, log)
		if err != nil {
			log.Error("building dependencies", zap.Error(err))
			return err
		}
		defer d.Close()
		backend = localBackend{svc: d.service}
	}

	role, _ := cmd.Flags().GetString("role")
	if role == "" {
		if role, err = selectRole(config.Interview.Role); err != nil {
			return err
		}
	}
	count, _ := cmd.Flags().GetInt("questions")
	candidate, _ := cmd.Flags().GetStringToString("candidate")

	session, err := backend.Start(ctx, interview.StartRequest{
		Role:          role,
		Candidate:     candidate,
		QuestionCount: count,
	})
	if err != nil {
		return fmt.Errorf("starting interview: %w", err)
	}
	log.Debug("interview started", logger.SessionFields(session.ID, 0)...)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Mock interview: %s, %d questions", session.Role, len(session.Questions))))

	err = askQuestions(ctx, out, backend, session)
	switch {
	case errors.Is(err, errQuit):
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("Interview %s left unfinished.", session.ID)))
		return nil
	case err != nil:
		return err
	}

	rep, err := backend.Report(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("getting report: %w", err)
	}
	printReport(out, rep)
	return nil
}

func askQuestions(ctx context.Context, out io.Writer, backend interviewBackend, session *interview.Session) error {
	for {
		q, err := backend.CurrentQuestion(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("getting question: %w", err)
		}
		if q == nil {
			return nil
		}

		progress := fmt.Sprintf("Question %d of %d", questionNumber(session, q.ID), len(session.Questions))
		fmt.Fprintln(out)
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%s · %s · %s", progress, q.Category, q.Difficulty)))
		fmt.Fprintln(out, questionText.Render(q.Prompt))

		answerPrompt := promptui.Prompt{Label: "Answer"}
		answer, err := answerPrompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errQuit
			}
			return err
		}

		result, err := backend.Submit(ctx, session.ID, interview.SubmitRequest{QuestionID: q.ID, Answer: answer})
		if err != nil {
			return fmt.Errorf("submitting answer: %w", err)
		}
		printEvaluation(out, result.Evaluation)

		if result.Completed {
			return nil
		}

		menu := promptui.Select{
			Label: fmt.Sprintf("%.0f%% done", result.Progress.Percentage),
			Items: []string{PromptContinue, PromptQuit},
		}
		_, action, err := menu.Run()
		if err != nil {
			return errQuit
		}
		if action == PromptQuit {
			return errQuit
		}
	}
}

func selectRole(fallback string) (string, error) {
	roles := bank.Roles()
	cursor := 0
	for i, r := range roles {
		if r == bank.NormalizeRole(fallback) {
			cursor = i
		}
	}
	rolePrompt := promptui.Select{
		Label:     "Choose a role",
		Items:     roles,
		CursorPos: cursor,
	}
	_, role, err := rolePrompt.Run()
	if err != nil {
		return "", fmt.Errorf("choosing a role: %w", err)
	}
	return role, nil
}

func questionNumber(session *interview.Session, id int) int {
	for i, q := range session.Questions {
		if q.ID == id {
			return i + 1
		}
	}
	return 0
}

func scoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 80:
		return goodStyle
	case score >= 60:
		return warnStyle
	default:
		return badStyle
	}
}

func printEvaluation(out io.Writer, e *evaluator.Evaluation) {
	if e == nil {
		return
	}
	var b strings.Builder
	b.WriteString(scoreStyle(float64(e.Score)).Render(fmt.Sprintf("Score %d/100", e.Score)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (%s)", e.Source)))
	if e.Feedback != "" {
		b.WriteString("\n" + e.Feedback)
	}
	for _, s := range e.Strengths {
		b.WriteString("\n" + goodStyle.Render("+ ") + s)
	}
	for _, w := range e.Weaknesses {
		b.WriteString("\n" + badStyle.Render("- ") + w)
	}
	fmt.Fprintln(out, boxStyle.Render(b.String()))
}

func printReport(out io.Writer, rep *report.Report) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Interview report") + "\n")
	b.WriteString(scoreStyle(rep.OverallScore).Render(fmt.Sprintf("Overall %.1f/100 · %s", rep.OverallScore, rep.PerformanceLevel)) + "\n")
	b.WriteString(fmt.Sprintf("Decision: %s (%s confidence)\n", rep.Decision.Decision, rep.Decision.Confidence))
	b.WriteString(rep.ExecutiveSummary + "\n")

	b.WriteString("\n" + questionText.Render("Sections") + "\n")
	for _, s := range rep.Sections {
		b.WriteString(fmt.Sprintf("  %-10s %s  %s\n", s.Category, scoreStyle(s.Score).Render(fmt.Sprintf("%5.1f", s.Score)), dimStyle.Render(s.Level)))
	}

	writeList(&b, "Strengths", rep.Strengths, goodStyle)
	writeList(&b, "Improvement areas", rep.ImprovementAreas, warnStyle)
	writeList(&b, "Critical gaps", rep.CriticalGaps, badStyle)
	writeList(&b, "Next steps", rep.Decision.NextSteps, dimStyle)

	if rep.DegradedTurns > 0 {
		b.WriteString("\n" + warnStyle.Render(fmt.Sprintf("%d answers were scored without AI.", rep.DegradedTurns)) + "\n")
	}
	fmt.Fprintln(out, boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func writeList(b *strings.Builder, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + questionText.Render(title) + "\n")
	for _, item := range items {
		b.WriteString("  " + style.Render("•") + " " + item + "\n")
	}
}
