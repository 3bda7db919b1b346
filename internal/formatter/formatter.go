// package formatter provides functions to export comparison results to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/arx/internal/models"
)

// blockURL returns the public are.na page for a block.
func blockURL(id int) string {
	return fmt.Sprintf("https://www.are.na/block/%d", id)
}

func sourceOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportToCSV converts a block list to CSV format with columns: Block ID, Source, Image URL, Channels
func ExportToCSV(blocks []models.Block) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Block ID", "Source", "Image URL", "Channels"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, block := range blocks {
		record := []string{
			strconv.Itoa(block.ID),
			sourceOrEmpty(block.Source),
			sourceOrEmpty(block.ImageURL),
			strings.Join(block.Channels, "; "),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a comparison result as a Markdown report.
func ExportToMarkdown(user1, user2 string, common, user1Blocks, user2Blocks []models.Block) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Common blocks: %s × %s\n\n", user1, user2))
	buf.WriteString(fmt.Sprintf("**%s**: %d unique blocks\n", user1, len(user1Blocks)))
	buf.WriteString(fmt.Sprintf("**%s**: %d unique blocks\n", user2, len(user2Blocks)))
	buf.WriteString(fmt.Sprintf("**Common**: %d blocks\n\n", len(common)))

	if len(common) == 0 {
		buf.WriteString("No common blocks found.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Blocks\n\n")
	for i, block := range common {
		buf.WriteString(fmt.Sprintf("%d. [%d](%s)", i+1, block.ID, blockURL(block.ID)))
		if block.Source != nil {
			buf.WriteString(fmt.Sprintf(" — <%s>", *block.Source))
		}
		buf.WriteString("\n")
		if len(block.Channels) > 0 {
			buf.WriteString(fmt.Sprintf("   - Channels: %s\n", strings.Join(block.Channels, ", ")))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a comparison result to plain text format
func ExportToText(user1, user2 string, common, user1Blocks, user2Blocks []models.Block) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Comparison: %s vs %s\n", user1, user2))
	buf.WriteString(fmt.Sprintf("%s blocks: %d\n", user1, len(user1Blocks)))
	buf.WriteString(fmt.Sprintf("%s blocks: %d\n", user2, len(user2Blocks)))
	buf.WriteString(fmt.Sprintf("Common blocks: %d\n\n", len(common)))

	for i, block := range common {
		buf.WriteString(fmt.Sprintf("%d. %s", i+1, blockURL(block.ID)))
		if block.Source != nil {
			buf.WriteString(fmt.Sprintf(" (%s)", *block.Source))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}
