package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/disinfowatch/propextract/internal/extract"
	"github.com/disinfowatch/propextract/internal/feed"
)

var (
	batchFile  string
	batchFeed  string
	batchLimit int
	batchLang  string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process multiple articles from a file or feed",
	Long: `Process articles in batch, one at a time, and save the collection once at
the end. A failed article is reported and skipped; the rest continue.

With --file, the input is a JSON array of objects with the fields title,
source_url, source_language, original_text, and human_analysis. With --feed,
entries are pulled from an RSS/Atom feed.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "JSON file of articles to process")
	batchCmd.Flags().StringVar(&batchFeed, "feed", "", "RSS/Atom feed URL to pull articles from")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "Maximum feed items to process")
	batchCmd.Flags().StringVar(&batchLang, "lang", "", "Source language for feed articles")
}

// batchArticle is the on-disk shape of one --file entry.
type batchArticle struct {
	Title          string `json:"title"`
	SourceURL      string `json:"source_url"`
	SourceLanguage string `json:"source_language"`
	OriginalText   string `json:"original_text"`
	HumanAnalysis  string `json:"human_analysis"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	if (batchFile == "") == (batchFeed == "") {
		return fmt.Errorf("exactly one of --file or --feed is required")
	}

	articles, err := collectBatch()
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		fmt.Println("Nothing to process.")
		return nil
	}

	col, path, err := loadCollection()
	if err != nil {
		return err
	}
	extractor := extract.New(newClient(), col)

	fmt.Printf("Processing %d articles...\n", len(articles))
	successful := 0
	duplicates := 0
	for i, a := range articles {
		fmt.Printf("[%d/%d] %s\n", i+1, len(articles), a.Title)

		if extractor.CheckDuplicate(a) {
			fmt.Println("  Skipping: looks like an existing entry")
			duplicates++
			continue
		}

		entry, err := submitOne(cmd.Context(), extractor, a)
		if err != nil {
			return err
		}
		if entry != nil {
			successful++
		}
	}

	if err := col.Save(path); err != nil {
		return err
	}

	fmt.Printf("\nBatch complete: %d processed, %d duplicates skipped, %d failed.\n",
		successful, duplicates, len(articles)-successful-duplicates)
	fmt.Printf("Collection now holds %d entries.\n", len(col.Entries))
	return nil
}

func collectBatch() ([]extract.Article, error) {
	if batchFile != "" {
		data, err := os.ReadFile(batchFile)
		if err != nil {
			return nil, fmt.Errorf("reading batch file: %w", err)
		}
		var raw []batchArticle
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing batch file: %w", err)
		}
		articles := make([]extract.Article, 0, len(raw))
		for i, a := range raw {
			title := a.Title
			if title == "" {
				title = fmt.Sprintf("Article %d", i+1)
			}
			articles = append(articles, extract.Article{
				Title:          title,
				SourceURL:      a.SourceURL,
				SourceLanguage: a.SourceLanguage,
				OriginalText:   a.OriginalText,
				HumanAnalysis:  a.HumanAnalysis,
			})
		}
		return articles, nil
	}

	limit := batchLimit
	if limit == 0 {
		limit = cfg.Fetch.MaxFeedItems
	}
	items, err := feed.Parse(batchFeed, limit)
	if err != nil {
		return nil, err
	}
	articles := make([]extract.Article, 0, len(items))
	for _, it := range items {
		articles = append(articles, extract.Article{
			Title:          it.Title,
			SourceURL:      it.URL,
			SourceLanguage: batchLang,
			OriginalText:   it.Text,
		})
	}
	return articles, nil
}
