package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/disinfowatch/propextract/internal/extract"
	"github.com/disinfowatch/propextract/internal/fetch"
	"github.com/disinfowatch/propextract/internal/ledger"
	"github.com/disinfowatch/propextract/internal/repair"
	"github.com/disinfowatch/propextract/internal/webclean"
)

var (
	submitFromURL  string
	submitTitle    string
	submitURL      string
	submitLanguage string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one article for analysis",
	Long: `Submit an article for LLM analysis and append the result to the collection.

Without flags this runs an interactive session: title, URL, and language
prompts, then the article text pasted until two blank lines, then an optional
human analysis pasted until a line containing only END.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitFromURL, "from-url", "", "Fetch the article text from a URL instead of pasting it")
	submitCmd.Flags().StringVar(&submitTitle, "title", "", "Article title (skips the interactive prompt)")
	submitCmd.Flags().StringVar(&submitURL, "url", "", "Source URL to record")
	submitCmd.Flags().StringVar(&submitLanguage, "lang", "", "Source language, e.g. russian, polish")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	col, path, err := loadCollection()
	if err != nil {
		return err
	}

	extractor := extract.New(newClient(), col)
	reader := bufio.NewReader(os.Stdin)

	article, err := gatherArticle(reader)
	if err != nil {
		return err
	}
	if article == nil {
		return nil // user quit
	}

	fmt.Println("\nProcessing summary:")
	fmt.Printf("  Title: %s\n", article.Title)
	fmt.Printf("  URL: %s\n", orNone(article.SourceURL))
	fmt.Printf("  Language: %s\n", orNone(article.SourceLanguage))
	fmt.Printf("  Text length: %d characters\n", len(article.OriginalText))
	fmt.Printf("  Human analysis: %s\n", yesNo(article.HumanAnalysis != ""))

	if extractor.CheckDuplicate(*article) {
		fmt.Println("\nWarning: this article looks similar to an existing entry.")
		if !confirm(reader, "Continue anyway? (y/N): ", false) {
			fmt.Println("Processing cancelled.")
			return nil
		}
	}

	if !confirm(reader, "\nProcess with LLM? (Y/n): ", true) {
		fmt.Println("Skipped.")
		return nil
	}

	entry, err := submitOne(cmd.Context(), extractor, *article)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}

	if err := col.Save(path); err != nil {
		return err
	}
	fmt.Printf("\nSaved entry #%d. Collection now holds %d entries.\n", entry.ID, len(col.Entries))
	return nil
}

// gatherArticle assembles the submission from flags, a fetched URL, or the
// interactive prompts. Returns nil when the user quits.
func gatherArticle(reader *bufio.Reader) (*extract.Article, error) {
	if submitFromURL != "" {
		f := fetch.New(time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second)
		fetched, err := f.Fetch(context.Background(), submitFromURL)
		if err != nil {
			return nil, err
		}
		title := submitTitle
		if title == "" {
			title = fetched.Title
		}
		fmt.Printf("Fetched %q (%d characters)\n", title, len(fetched.Text))
		return &extract.Article{
			Title:          title,
			SourceURL:      submitFromURL,
			SourceLanguage: submitLanguage,
			OriginalText:   fetched.Text,
		}, nil
	}

	title := submitTitle
	if title == "" {
		title = promptLine(reader, "Article title (or 'quit' to exit): ")
		switch strings.ToLower(title) {
		case "quit", "exit", "q":
			return nil, nil
		}
	}

	sourceURL := submitURL
	if sourceURL == "" {
		sourceURL = promptLine(reader, "Source URL: ")
	}
	language := submitLanguage
	if language == "" {
		language = promptLine(reader, "Source language (e.g. polish, russian, english): ")
	}

	fmt.Println("\nPaste the article text. Finish with two blank lines:")
	originalText := readUntilTwoBlankLines(reader)
	if strings.TrimSpace(originalText) == "" {
		return nil, fmt.Errorf("no article text provided")
	}

	fmt.Println("\nPaste the human analysis (HTML is fine), or END on its own line to skip:")
	humanAnalysis := webclean.Clean(readUntilEndMarker(reader))
	if humanAnalysis != "" {
		fmt.Printf("Captured human analysis (%d characters)\n", len(humanAnalysis))
	}

	return &extract.Article{
		Title:          title,
		SourceURL:      sourceURL,
		SourceLanguage: language,
		OriginalText:   originalText,
		HumanAnalysis:  humanAnalysis,
	}, nil
}

// submitOne runs a single submission, reporting recoverable failures to the
// operator instead of aborting. A nil entry with nil error means the article
// was rejected.
func submitOne(ctx context.Context, extractor *extract.Extractor, article extract.Article) (*ledger.Entry, error) {
	entry, err := extractor.Submit(ctx, article)
	if err != nil {
		var fe *repair.FormatError
		if errors.As(err, &fe) {
			fmt.Println("Could not recover structured analysis from the model response.")
			fmt.Printf("Raw response (first 300 chars): %.300s\n", fe.Raw)
			return nil, nil
		}
		fmt.Printf("Analysis failed: %v\n", err)
		return nil, nil
	}

	fmt.Printf("Primary narrative: %s\n", entry.Analysis.PrimaryNarrative)
	if len(entry.Analysis.Techniques) > 0 {
		fmt.Printf("Techniques: %s\n", strings.Join(entry.Analysis.Techniques, ", "))
	}
	fmt.Printf("Russian alignment: %.0f/5\n", entry.Analysis.Scores.RussianAlignment)
	if entry.Analysis.Translation != nil {
		fmt.Println("Translation included in analysis.")
	}
	return entry, nil
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func readUntilTwoBlankLines(reader *bufio.Reader) string {
	var lines []string
	empty := 0
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			empty++
			if empty >= 2 || err != nil {
				break
			}
		} else {
			empty = 0
			lines = append(lines, line)
		}
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func readUntilEndMarker(reader *bufio.Reader) string {
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		switch strings.ToUpper(trimmed) {
		case "END", "DONE", "FINISH":
			return strings.Join(lines, "\n")
		}
		if trimmed != "" || len(lines) > 0 {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			return strings.Join(lines, "\n")
		}
	}
}

func confirm(reader *bufio.Reader, prompt string, defaultYes bool) bool {
	answer := strings.ToLower(promptLine(reader, prompt))
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
