package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/mock-interviewer/internal/bank"
	"github.com/spigell/mock-interviewer/internal/logger"
	"github.com/spigell/mock-interviewer/internal/store"
	"github.com/spigell/mock-interviewer/internal/utils"
	"go.uber.org/zap"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the question bank with recorded statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listQuestions(cmd)
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)

	questionsCmd.Flags().StringP("role", "r", "", "preview the questions selected for this role")
	questionsCmd.Flags().IntP("count", "n", 0, "number of questions to preview with --role (default is interview.question-count)")
}

func listQuestions(cmd *cobra.Command) error {
	ctx := cmd.Context()

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

	questions, err := loadBank(config.QuestionBank)
	if err != nil {
		return err
	}

	st, err := openStore(config.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.QuestionStats(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int]store.QuestionStat, len(stats))
	for _, s := range stats {
		byID[s.QuestionID] = s
	}

	list := questions.All()
	role, _ := cmd.Flags().GetString("role")
	if role != "" {
		count, _ := cmd.Flags().GetInt("count")
		if count <= 0 {
			count = config.Interview.QuestionCount
		}
		eff, err := st.Effectiveness(ctx)
		if err != nil {
			return err
		}
		list = questions.Select(role, count, eff)
		log.Info("selection preview", zap.String(logger.FieldRole, bank.NormalizeRole(role)), zap.Int("count", len(list)))
	}

	return writeQuestions(cmd.OutOrStdout(), list, byID)
}

func writeQuestions(out io.Writer, list []bank.Question, stats map[int]store.QuestionStat) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tDIFFICULTY\tTOPIC\tUSED\tAVG\tEFFECT\tPROMPT")
	for _, q := range list {
		s, ok := stats[q.ID]
		used, avg, eff := "-", "-", "-"
		if ok {
			used = fmt.Sprintf("%d", s.UsageCount)
			avg = fmt.Sprintf("%.1f", s.AverageScore)
			eff = fmt.Sprintf("%.3f", s.Effectiveness)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			q.ID, q.Category, q.Difficulty, q.Topic, used, avg, eff, utils.TruncateForLog(q.Prompt, 60))
	}
	return w.Flush()
}

