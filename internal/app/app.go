package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rebeliceyang/qbsearch/internal/catalog"
	"github.com/rebeliceyang/qbsearch/internal/config"
	"github.com/rebeliceyang/qbsearch/internal/db/connection"
	"github.com/rebeliceyang/qbsearch/internal/db/metadata"
	"github.com/rebeliceyang/qbsearch/internal/favorites"
	"github.com/rebeliceyang/qbsearch/internal/filter"
	"github.com/rebeliceyang/qbsearch/internal/history"
	"github.com/rebeliceyang/qbsearch/internal/models"
	"github.com/rebeliceyang/qbsearch/internal/search"
	"github.com/rebeliceyang/qbsearch/internal/ui/components"
	"github.com/rebeliceyang/qbsearch/internal/ui/help"
	"github.com/rebeliceyang/qbsearch/internal/ui/theme"
)

// Deps are the collaborators the application is built from. Pool, History and Saved are optional.
type Deps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Catalog *catalog.Catalog
	Pool    *connection.Pool
	History *history.Store
	Saved   *favorites.Manager
	Initial models.TagFilter
}

// App is the main application model
type App struct {
	state  models.AppState
	config *config.Config
	theme  theme.Theme
	log    zerolog.Logger

	builder       *filter.Builder
	searchBar     *components.SearchBar
	preview       *components.WherePreview
	savedDialog   *components.SavedFiltersDialog
	historyDialog *components.HistoryDialog

	pool    *connection.Pool
	history *history.Store
	saved   *favorites.Manager

	// countSeq drops count results that belong to an older filter
	countSeq int

	status    string
	statusErr bool
}

// MatchCountMsg is sent when a match count query completes
type MatchCountMsg struct {
	Seq    int
	Filter models.TagFilter
	Count  int64
	Err    error
}

// HistoryLoadedMsg is sent when history entries are loaded
type HistoryLoadedMsg struct {
	Entries []history.Entry
	Err     error
}

// statusMsg reports the outcome of a background action
type statusMsg struct {
	text string
	err  error
}

// New creates a new App instance
func New(deps Deps) *App {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	cat := deps.Catalog
	if cat == nil {
		cat = &catalog.Catalog{}
	}

	state := models.NewAppState()
	state.Schema = cfg.Catalog.Schema
	state.Table = cfg.Catalog.Table
	switch {
	case deps.Pool != nil:
		state.CatalogSource = "postgres"
	case len(cat.Keys) > 0:
		state.CatalogSource = "file"
	}

	th := theme.GetTheme(cfg.UI.Theme)
	log := deps.Logger

	machine := search.New(search.Config{
		Keys:        cat.Keys,
		Values:      cat.Values,
		WhereClause: cfg.Search.WhereClause,
		Filters:     deps.Initial,
		Logger:      &log,
	})

	a := &App{
		state:         state,
		config:        cfg,
		theme:         th,
		log:           log.With().Str("component", "app").Logger(),
		builder:       filter.NewBuilder(),
		searchBar:     components.NewSearchBar(machine, th, cfg.Search.Placeholder, cfg.Search.MaxSuggestions),
		preview:       components.NewWherePreview(th),
		savedDialog:   components.NewSavedFiltersDialog(th),
		historyDialog: components.NewHistoryDialog(th),
		pool:          deps.Pool,
		history:       deps.History,
		saved:         deps.Saved,
	}

	a.updatePreview(machine.Filters())
	a.updateDimensions()
	return a
}

// Filters returns the current filter
func (a *App) Filters() models.TagFilter {
	return a.searchBar.Machine.Filters()
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if f := a.Filters(); len(f.Items) > 0 && a.pool != nil {
		cmds = append(cmds, a.countCmd(f))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updateDimensions()
		return a, nil

	case components.FilterChangedMsg:
		return a, a.filterChanged(msg.Filter)

	case components.SearchErrorMsg:
		a.setStatus("", msg.Err)
		return a, nil

	case components.SearchBlurredMsg:
		a.setStatus("press / to edit the filter, q to quit", nil)
		return a, nil

	case MatchCountMsg:
		if msg.Seq != a.countSeq {
			return a, nil
		}
		a.preview.Counting = false
		if msg.Err != nil {
			a.log.Warn().Err(msg.Err).Msg("match count failed")
			a.setStatus("", msg.Err)
			return a, a.recordCmd(msg.Filter, history.UnknownCount)
		}
		a.preview.MatchCount = msg.Count
		a.state.MatchCount = msg.Count
		return a, a.recordCmd(msg.Filter, msg.Count)

	case HistoryLoadedMsg:
		if msg.Err != nil {
			a.setStatus("", msg.Err)
			return a, nil
		}
		a.historyDialog.SetEntries(msg.Entries)
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.err)
		return a, nil

	case components.CloseDialogMsg:
		return a, a.closeDialog()

	case components.ApplySavedFilterMsg:
		if a.saved != nil {
			if err := a.saved.RecordUsage(msg.Filter.ID); err != nil {
				a.log.Warn().Err(err).Str("id", msg.Filter.ID).Msg("record usage failed")
			}
		}
		a.setStatus("applied "+msg.Filter.Name, nil)
		return a, tea.Batch(a.closeDialog(), a.applyFilter(msg.Filter.Filter))

	case components.ApplyHistoryMsg:
		return a, tea.Batch(a.closeDialog(), a.applyFilter(msg.Filter))

	case components.SaveFilterMsg:
		a.saveFilter(msg)
		return a, nil

	case components.DeleteSavedFilterMsg:
		if err := a.saved.Delete(msg.ID); err != nil {
			a.setStatus("", err)
		}
		a.savedDialog.SetFilters(a.saved.GetMostUsed(0))
		return a, nil

	case components.ExportSavedFiltersMsg:
		a.exportSaved(msg.Format)
		return a, nil
	}

	var cmd tea.Cmd
	a.searchBar, cmd = a.searchBar.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.state.ViewMode == models.HelpMode {
		if key == "f1" || key == "esc" || key == "q" {
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	}

	switch a.state.Focus {
	case models.FocusSaved:
		var cmd tea.Cmd
		a.savedDialog, cmd = a.savedDialog.Update(msg)
		return a, cmd
	case models.FocusHistory:
		var cmd tea.Cmd
		a.historyDialog, cmd = a.historyDialog.Update(msg)
		return a, cmd
	}

	switch key {
	case "f1":
		a.state.ViewMode = models.HelpMode
		return a, nil
	case "ctrl+s":
		if a.saved == nil {
			a.setStatus("", fmt.Errorf("saved filters are unavailable"))
			return a, nil
		}
		a.savedDialog.SetFilters(a.saved.GetMostUsed(0))
		a.state.Focus = models.FocusSaved
		return a, nil
	case "ctrl+o":
		if a.history == nil {
			a.setStatus("", fmt.Errorf("history is disabled"))
			return a, nil
		}
		a.state.Focus = models.FocusHistory
		return a, a.loadHistoryCmd()
	case "ctrl+y":
		if err := a.preview.CopyContent(); err != nil {
			a.setStatus("", err)
		} else {
			a.setStatus("copied to clipboard", nil)
		}
		return a, nil
	case "ctrl+r":
		if a.pool == nil {
			return a, nil
		}
		return a, a.countCmd(a.Filters())
	}

	if !a.searchBar.Focused() {
		switch key {
		case "q":
			return a, tea.Quit
		case "/", "i":
			a.setStatus("", nil)
			return a, a.searchBar.Focus()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.searchBar, cmd = a.searchBar.Update(msg)
	return a, cmd
}

// filterChanged refreshes the preview and starts counting or recording the new filter
func (a *App) filterChanged(f models.TagFilter) tea.Cmd {
	a.updatePreview(f)
	a.state.LastApplied = time.Now()
	a.log.Debug().Str("expression", a.preview.Expression).Int("tags", len(f.Items)).Msg("filter changed")

	if a.pool != nil && len(f.Items) > 0 {
		return a.countCmd(f)
	}
	return a.recordCmd(f, history.UnknownCount)
}

func (a *App) applyFilter(f models.TagFilter) tea.Cmd {
	a.searchBar.Reset(f)
	return a.filterChanged(a.Filters())
}

func (a *App) updatePreview(f models.TagFilter) {
	where, args, err := a.builder.BuildWhere(f)
	if err != nil {
		a.log.Warn().Err(err).Msg("building WHERE clause failed")
		where, args = "", nil
	}
	a.preview.SetContent(filter.Expression(f), where, args)
	a.state.MatchCount = components.UnknownCount
}

func (a *App) countCmd(f models.TagFilter) tea.Cmd {
	a.countSeq++
	seq := a.countSeq
	a.preview.Counting = true

	pool := a.pool
	schema, table := a.state.Schema, a.state.Table
	timeout := time.Duration(a.config.Catalog.TimeoutMs) * time.Millisecond
	where, args, buildErr := a.builder.BuildWhere(f)

	return func() tea.Msg {
		if buildErr != nil {
			return MatchCountMsg{Seq: seq, Filter: f, Err: buildErr}
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := metadata.CountMatching(ctx, pool, schema, table, where, args)
		return MatchCountMsg{Seq: seq, Filter: f, Count: n, Err: err}
	}
}

func (a *App) recordCmd(f models.TagFilter, count int64) tea.Cmd {
	if a.history == nil || len(f.Items) == 0 {
		return nil
	}
	store := a.history
	maxEntries := a.config.History.MaxEntries
	entry := history.Entry{
		Expression: filter.Expression(f),
		Filter:     f,
		Source:     a.sourceName(),
		MatchCount: count,
	}

	return func() tea.Msg {
		if err := store.Add(entry); err != nil {
			return statusMsg{err: fmt.Errorf("failed to record history: %w", err)}
		}
		if maxEntries > 0 {
			if _, err := store.Prune(maxEntries); err != nil {
				return statusMsg{err: fmt.Errorf("failed to prune history: %w", err)}
			}
		}
		return nil
	}
}

func (a *App) loadHistoryCmd() tea.Cmd {
	store := a.history
	return func() tea.Msg {
		entries, err := store.GetRecent(100)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

func (a *App) saveFilter(msg components.SaveFilterMsg) {
	f := a.Filters()
	sf, err := a.saved.Add(msg.Name, msg.Description, f, filter.Expression(f))
	if err != nil {
		a.setStatus("", err)
		return
	}
	a.log.Info().Str("id", sf.ID).Str("name", sf.Name).Msg("filter saved")
	a.setStatus("saved "+sf.Name, nil)
	a.savedDialog.SetFilters(a.saved.GetMostUsed(0))
}

func (a *App) exportSaved(format string) {
	var path string
	var err error
	if format == "json" {
		path, err = a.saved.ExportToJSON()
	} else {
		path, err = a.saved.ExportToCSV()
	}
	if err != nil {
		a.setStatus("", err)
		return
	}
	a.setStatus("exported to "+path, nil)
}

func (a *App) closeDialog() tea.Cmd {
	a.state.Focus = models.FocusSearch
	return a.searchBar.Focus()
}

func (a *App) setStatus(text string, err error) {
	if err != nil {
		a.status = err.Error()
		a.statusErr = true
		return
	}
	a.status = text
	a.statusErr = false
}

func (a *App) sourceName() string {
	if a.state.Table == "" {
		return a.state.CatalogSource
	}
	return a.state.Schema + "." + a.state.Table
}

// updateDimensions sizes the widgets to the window
func (a *App) updateDimensions() {
	width := a.state.Width
	if a.config.UI.Width > 0 && a.config.UI.Width < width {
		width = a.config.UI.Width
	}
	if width < 30 {
		width = 30
	}

	a.searchBar.Width = width
	a.preview.Width = width

	dialogWidth := width - 4
	dialogHeight := a.state.Height - 6
	if dialogHeight < 8 {
		dialogHeight = 8
	}
	a.savedDialog.Width, a.savedDialog.Height = dialogWidth, dialogHeight
	a.historyDialog.Width, a.historyDialog.Height = dialogWidth, dialogHeight
}

// View implements tea.Model
func (a *App) View() string {
	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	switch a.state.Focus {
	case models.FocusSaved:
		return a.place(a.savedDialog.View())
	case models.FocusHistory:
		return a.place(a.historyDialog.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTopBar(),
		a.searchBar.View(),
		a.preview.View(),
		a.renderStatusBar(),
	)
}

func (a *App) place(content string) string {
	return lipgloss.Place(a.state.Width, a.state.Height, lipgloss.Center, lipgloss.Center, content)
}

func (a *App) renderTopBar() string {
	right := "no catalog"
	if src := a.sourceName(); src != "" {
		right = src
	}

	return lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar("qbsearch", right))
}

func (a *App) renderStatusBar() string {
	left := "[F1] Help | [Ctrl+S] Saved | [Ctrl+O] History | [Ctrl+Y] Copy"
	fg := a.theme.Foreground
	if a.status != "" {
		left = a.status
		if a.statusErr {
			fg = a.theme.Error
		}
	}

	return lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(fg).
		Padding(0, 2).
		Render(a.formatStatusBar(left, a.searchBar.Machine.Stage().String()))
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := a.state.Width - 4
	if availableWidth < 0 {
		availableWidth = 0
	}

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen > availableWidth {
		if availableWidth > rightLen {
			return truncateRunes(left, availableWidth-rightLen) + right
		}
		return truncateRunes(left, availableWidth)
	}

	spacing := availableWidth - leftLen - rightLen
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
