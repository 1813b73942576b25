package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/billfold/billfold/internal/api"
	"github.com/billfold/billfold/internal/queue"
)

// buildQueueStatusRows orders rows by queue lifecycle; unrecognized status
// keys sort alphabetically after the known ones.
func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(stats))
	seen := make(map[string]struct{}, len(stats))
	for _, status := range queue.AllStatuses() {
		key := string(status)
		if count, ok := stats[key]; ok {
			rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", count)})
			seen[key] = struct{}{}
		}
	}
	extras := make([]string, 0, len(stats)-len(seen))
	for key := range stats {
		if _, ok := seen[key]; !ok {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildQueueListRows(items []api.QueueItem) [][]string {
	if len(items) == 0 {
		return nil
	}
	sorted := api.SortQueueItemsNewestFirst(items)

	rows := make([][]string, 0, len(sorted))
	for _, item := range sorted {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ID),
			displayCompany(item),
			valueOrDash(item.InvoiceNumber),
			valueOrDash(item.Amount),
			formatStatusLabel(item.Status),
			formatDisplayTime(item.CreatedAt),
		})
	}
	return rows
}

func buildReviewRows(items []api.QueueItem) [][]string {
	if len(items) == 0 {
		return nil
	}
	sorted := api.SortQueueItemsNewestFirst(items)

	rows := make([][]string, 0, len(sorted))
	for _, item := range sorted {
		rows = append(rows, []string{
			fmt.Sprintf("%d", item.ID),
			displayFile(item),
			valueOrDash(item.ReviewReason),
			formatDisplayTime(item.CreatedAt),
		})
	}
	return rows
}

// displayFile names a queue item by its original file, which identifies a
// review item better than possibly-missing extracted fields.
func displayFile(item api.QueueItem) string {
	if source := strings.TrimSpace(item.SourcePath); source != "" {
		return filepath.Base(source)
	}
	if staged := strings.TrimSpace(item.StagedPath); staged != "" {
		return filepath.Base(staged)
	}
	return "Unknown"
}

// displayCompany falls back to the source file name until extraction has
// produced a company name.
func displayCompany(item api.QueueItem) string {
	company := strings.TrimSpace(item.CompanyName)
	if company != "" {
		return company
	}
	source := strings.TrimSpace(item.SourcePath)
	if source != "" {
		return filepath.Base(source)
	}
	return "Unknown"
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t := api.ParseQueueTime(value); !t.IsZero() {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func formatFingerprint(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	if len(value) > 12 {
		return value[:12]
	}
	return value
}

func valueOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}
