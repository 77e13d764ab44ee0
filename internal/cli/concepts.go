package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"learnloop/internal/mastery"
	"learnloop/internal/parser"
	"learnloop/internal/service"
)

// quiz is the printable form of a generated quiz.
type quiz struct {
	Concept      string                `json:"concept"`
	MasteryLevel mastery.Level         `json:"mastery_level"`
	Questions    []parser.QuizQuestion `json:"questions"`
	Stage        parser.Stage          `json:"stage"`
}

// takenQuiz is a quiz together with the graded answers read from stdin.
type takenQuiz struct {
	quiz
	Result service.GradeResponse `json:"result"`
}

func init() {
	conceptsCmd := &cobra.Command{
		Use:   "concepts",
		Short: "List concepts grouped by main label with their mastery",
		Args:  cobra.NoArgs,
		RunE:  runConcepts,
	}

	extractCmd := &cobra.Command{
		Use:   "extract <document-id>",
		Short: "Extract and store the concepts of a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}

	quizCmd := &cobra.Command{
		Use:   "quiz <concept>",
		Short: "Generate a quiz about a concept",
		Long: "Generate a quiz about a concept. With --take, answers are read from stdin one per line " +
			"(a letter for multiple choice, free text otherwise, blank to skip), graded, and recorded.",
		Args: cobra.MinimumNArgs(1),
		RunE: runQuiz,
	}
	quizCmd.Flags().IntP("level", "l", int(mastery.NotStarted), "Mastery level 0-3 the questions target")
	quizCmd.Flags().IntP("count", "n", service.DefaultQuizQuestions, "Number of questions")
	quizCmd.Flags().Bool("take", false, "Answer the quiz from stdin and record the score")

	recordCmd := &cobra.Command{
		Use:   "record <concept> <score>",
		Short: "Record a quiz score between 0 and 1 for a concept id or main label",
		Args:  cobra.ExactArgs(2),
		RunE:  runRecord,
	}

	RootCmd.AddCommand(conceptsCmd, extractCmd, quizCmd, recordCmd)
}

func runConcepts(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	groups, err := a.Learning.ListConcepts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list concepts: %w", err)
	}

	return render(cmd, groups, func(w io.Writer) {
		if len(groups) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("no concepts"))
			return
		}
		for _, g := range groups {
			fmt.Fprintf(w, "%s  %s\n", headingStyle.Render(g.Main), mutedStyle.Render(levelLabel(g.State)))
			for _, sub := range g.Subconcepts {
				fmt.Fprintf(w, "  - %s: %s\n", sub.Sub, sub.Description)
			}
		}
	})
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Learning.ExtractAndStoreConcepts(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	return render(cmd, res, func(w io.Writer) {
		fmt.Fprintf(w, "%s extracted, %d new %s\n",
			plural(len(res.Concepts), "concept"), res.Inserted, mutedStyle.Render("("+string(res.Stage)+")"))
		for _, c := range res.Concepts {
			fmt.Fprintf(w, "  %s / %s\n", c.Main, c.Sub)
		}
	})
}

func runQuiz(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetInt("level")
	count, _ := cmd.Flags().GetInt("count")
	take, _ := cmd.Flags().GetBool("take")
	concept := strings.Join(args, " ")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	result, err := a.Learning.GenerateQuiz(ctx, service.QuizRequest{
		Concept:      concept,
		Level:        mastery.Level(level),
		NumQuestions: count,
	})
	if err != nil {
		return fmt.Errorf("quiz: %w", err)
	}
	q := quiz{Concept: concept, MasteryLevel: mastery.Level(level), Questions: result.Questions, Stage: result.Stage}

	if !take {
		return render(cmd, q, func(w io.Writer) {
			printQuestions(w, q.Questions, true)
		})
	}

	if formatFlag == formatText {
		printQuestions(cmd.OutOrStdout(), q.Questions, false)
	}
	answers, err := readAnswers(cmd.InOrStdin(), q.Questions)
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}
	graded, err := a.Learning.GradeQuiz(ctx, service.GradeRequest{
		Concept:   concept,
		Questions: q.Questions,
		Answers:   answers,
	})
	if err != nil {
		return fmt.Errorf("grade: %w", err)
	}

	return render(cmd, takenQuiz{quiz: q, Result: graded}, func(w io.Writer) {
		printGrade(w, graded)
	})
}

func runRecord(cmd *cobra.Command, args []string) error {
	score, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", args[1], err)
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Learning.RecordQuizResult(cmd.Context(), args[0], score)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if !res.Found {
		return fmt.Errorf("concept %q not found", args[0])
	}

	return render(cmd, res, func(w io.Writer) {
		printMastery(w, res)
	})
}

func printQuestions(w io.Writer, questions []parser.QuizQuestion, withAnswers bool) {
	for i, q := range questions {
		fmt.Fprintf(w, "%s %s\n", headingStyle.Render(fmt.Sprintf("%d.", i+1)), q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'A'+j, opt)
		}
		if withAnswers {
			fmt.Fprintf(w, "   %s %s\n", mutedStyle.Render("answer:"), q.CorrectAnswer)
		}
	}
}

func printGrade(w io.Writer, res service.GradeResponse) {
	g := res.Grade
	for i, q := range g.Questions {
		mark := mutedStyle.Render("skipped")
		if q.Answered && q.Correct {
			mark = okStyle.Render("correct")
		} else if q.Answered {
			mark = errStyle.Render("wrong")
		}
		fmt.Fprintf(w, "%d. %s  %s\n", i+1, mark, mutedStyle.Render(q.CorrectAnswer))
	}
	fmt.Fprintf(w, "%s %d/%d answered correctly (score %.2f)\n", headingStyle.Render("Result:"), g.Correct, g.Answered, g.Score)
	if res.Mastery != nil {
		printMastery(w, *res.Mastery)
	}
}

func printMastery(w io.Writer, res service.MasteryResult) {
	if !res.Found {
		fmt.Fprintf(w, "%s\n", mutedStyle.Render("no stored concept matches "+res.Ref+", nothing recorded"))
		return
	}
	fmt.Fprintf(w, "%s: %s -> %s\n", res.Main, levelLabel(res.Previous), levelLabel(res.State))
}

func levelLabel(s mastery.State) string {
	return fmt.Sprintf("%s (%d/%d)", s.Level, s.Progress, mastery.MaxProgress)
}

// readAnswers reads one answer per question. A single letter A-D selects a multiple
// choice option; anything else is a free text answer. Blank lines and missing trailing
// lines skip the question.
func readAnswers(r io.Reader, questions []parser.QuizQuestion) ([]service.Answer, error) {
	answers := make([]service.Answer, 0, len(questions))
	scanner := bufio.NewScanner(r)
	for len(answers) < len(questions) && scanner.Scan() {
		answers = append(answers, parseAnswer(questions[len(answers)], scanner.Text()))
	}
	return answers, scanner.Err()
}

func parseAnswer(q parser.QuizQuestion, line string) service.Answer {
	line = strings.TrimSpace(line)
	if line == "" {
		return service.Answer{}
	}
	if q.Type == parser.TypeMultipleChoice && len(line) == 1 {
		c := line[0] | 0x20
		if c >= 'a' && c < 'a'+parser.OptionCount {
			idx := int(c - 'a')
			return service.Answer{Index: &idx}
		}
	}
	return service.Answer{Text: line}
}
