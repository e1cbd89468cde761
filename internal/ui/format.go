package ui

import (
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoData is shown instead of an average when nothing was estimable
const NoData = "No data"

// FormatSalary groups the digits of a salary for the given locale ("en" or "ru")
func FormatSalary(value *int, locale string) string {
	if value == nil {
		return NoData
	}
	if locale == "ru" {
		return message.NewPrinter(language.Russian).Sprintf("%d", *value)
	}
	return humanize.Comma(int64(*value))
}

// FormatCount groups the digits of a vacancy count
func FormatCount(n int, locale string) string {
	return FormatSalary(&n, locale)
}
