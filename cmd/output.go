package cmd

import (
	"fmt"
	"io"
	"strings"

	"ccs/config/models"
	"ccs/internal/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	keyCellStyle  = cellStyle.Foreground(lipgloss.Color("39"))
	dimCellStyle  = cellStyle.Foreground(lipgloss.Color("241"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	notSetDisplay = "Not set"
)

func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf(format, args...)))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyCellStyle
			default:
				return cellStyle
			}
		})
}

// renderModels prints providers with their masked keys and model lists
func renderModels(w io.Writer, providers []models.Provider) {
	if len(providers) == 0 {
		printWarning(w, "No providers or models found in config")
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Available Models"))
	t := newTable("Provider", "API Key", "Models")
	for _, p := range providers {
		list := "-"
		if len(p.Models) > 0 {
			list = strings.Join(p.Models, "\n")
		}
		t.Row(p.Name, utils.MaskAPIKey(p.APIKey), list)
	}
	fmt.Fprintln(w, t.Render())
}

// renderRouter prints every router type, marking the unset ones
func renderRouter(w io.Writer, r models.Router) {
	if r.IsEmpty() {
		printWarning(w, "No router configuration found")
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Current Router Configuration"))
	t := newTable("Router", "Model").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return keyCellStyle
			case routerCellUnset(r, row):
				return dimCellStyle
			default:
				return cellStyle
			}
		})
	for _, rt := range models.RouterTypes {
		value, ok := r.Get(rt)
		if !ok {
			value = notSetDisplay
		}
		t.Row(rt, value)
	}
	if r.HasThreshold {
		t.Row(models.LongContextThresholdKey, fmt.Sprintf("%d", r.LongContextThreshold))
	}
	fmt.Fprintln(w, t.Render())
}

func routerCellUnset(r models.Router, row int) bool {
	if row < 0 || row >= len(models.RouterTypes) {
		return false
	}
	_, ok := r.Get(models.RouterTypes[row])
	return !ok
}
