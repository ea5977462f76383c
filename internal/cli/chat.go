package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/filepicker"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"docchat/internal/client"
	"docchat/internal/config"
	"docchat/internal/models"
	"docchat/internal/session"
)

// maxVisibleJobs caps the upload panel; older jobs collapse into one line.
const maxVisibleJobs = 4

// backend is the slice of the HTTP client the chat model depends on.
// Narrow on purpose so the update loop can be tested against a stub.
type backend interface {
	Query(ctx context.Context, question string) (client.QueryResult, error)
	Upload(ctx context.Context, files []models.FileInfo, progress io.Writer) (client.UploadResult, error)
	Health(ctx context.Context) (client.Health, error)
}

// queryResultMsg carries the backend's answer for the in-flight question.
type queryResultMsg struct {
	res client.QueryResult
	err error
}

// uploadResultMsg resolves the upload batch it carries, as a whole.
type uploadResultMsg struct {
	batch    session.Batch
	uploaded int
	err      error
}

// summaryMsg carries fresh collection counters.
type summaryMsg struct {
	summary models.CollectionSummary
	err     error
}

// chatModel is the bubbletea model for the interactive chat.
type chatModel struct {
	backend backend
	addr    string
	cfg     config.Config
	theme   Theme

	sess session.Session

	input  textinput.Model
	spin   spinner.Model
	picker filepicker.Model

	pickerOpen bool
	notice     string
	scrollOff  int
	banner     bool
	bannerGen  int
	konami     konamiWatcher
	width      int
	height     int
	quitting   bool
}

// newChatModel creates the chat model.
func newChatModel(b backend, addr string, cfg config.Config) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about your documents, /upload <path>, /remove <id>"
	input.CharLimit = 2000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(defaultTheme.Status)

	picker := filepicker.New()
	picker.AllowedTypes = cfg.AllowedExtensions
	if home, err := os.UserHomeDir(); err == nil {
		picker.CurrentDirectory = home
	}

	return chatModel{
		backend: b,
		addr:    addr,
		cfg:     cfg,
		theme:   defaultTheme,
		sess:    session.New(time.Now()),
		input:   input,
		spin:    spin,
		picker:  picker,
	}
}

// Init refreshes the collection summary once at session start.
func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		m.refreshSummary(),
		m.spin.Tick,
	)
}

// Update handles messages and returns the updated model.
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 4 {
			m.input.SetWidth(msg.Width - 4)
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case queryResultMsg:
		now := time.Now()
		if msg.err != nil {
			slog.Warn("query failed", "error", msg.err)
			m.sess.Transcript = m.sess.Transcript.ResolveFailure(now)
		} else {
			m.sess.Transcript = m.sess.Transcript.Resolve(msg.res.Answer, msg.res.Sources, now)
		}
		m.scrollOff = 0
		return m, nil

	case uploadResultMsg:
		now := time.Now()
		if msg.err != nil {
			slog.Warn("upload batch failed", "jobs", len(msg.batch.JobIDs), "error", msg.err)
			m.sess.Uploads = m.sess.Uploads.Fail(msg.batch, now)
			m.notice = fmt.Sprintf("Upload failed. Is the backend running at %s?", m.addr)
			return m, nil
		}
		slog.Info("upload batch completed", "jobs", len(msg.batch.JobIDs), "uploaded", msg.uploaded)
		m.sess.Uploads = m.sess.Uploads.Complete(msg.batch, now)
		return m, m.refreshSummary()

	case summaryMsg:
		if msg.err != nil {
			// Stale counters stay on display until a refresh succeeds.
			slog.Debug("summary refresh skipped", "error", msg.err)
			return m, nil
		}
		m.sess.Summary = m.sess.Summary.Apply(msg.summary, time.Now())
		return m, nil

	case bannerExpiredMsg:
		if msg.gen == m.bannerGen {
			m.banner = false
		}
		return m, nil
	}

	// The filepicker drives its own directory reads through private messages.
	if m.pickerOpen {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey routes a key press depending on which surface is active.
func (m chatModel) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	var cmds []tea.Cmd

	// The easter-egg watcher sees every key and never swallows any.
	var matched bool
	m.konami, matched = m.konami.Observe(key)
	if matched {
		m.banner = true
		m.bannerGen++
		cmds = append(cmds, expireBanner(m.bannerGen))
	}

	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// A notice blocks everything until dismissed.
	if m.notice != "" {
		if key == "enter" || key == "esc" {
			m.notice = ""
		}
		return m, tea.Batch(cmds...)
	}

	if m.pickerOpen {
		if key == "esc" || key == "ctrl+o" {
			m.pickerOpen = false
			return m, tea.Batch(cmds...)
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)

		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.pickerOpen = false
			next, cmd := m.enqueueFiles([]string{path})
			return next, tea.Batch(append(cmds, cmd)...)
		}
		return m, tea.Batch(cmds...)
	}

	switch key {
	case "enter":
		next, cmd := m.submitInput()
		return next, tea.Batch(append(cmds, cmd)...)

	case "ctrl+o":
		m.pickerOpen = true
		cmds = append(cmds, m.picker.Init())

	case "pgup":
		m.scrollOff += m.transcriptHeight() - 1
		if max := m.maxScroll(); m.scrollOff > max {
			m.scrollOff = max
		}

	case "pgdown":
		m.scrollOff -= m.transcriptHeight() - 1
		if m.scrollOff < 0 {
			m.scrollOff = 0
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submitInput interprets the input line: slash commands act on the upload
// list, everything else is a question for the backend.
func (m chatModel) submitInput() (chatModel, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return m, nil
	}

	if strings.HasPrefix(raw, "/") {
		return m.runSlashCommand(raw)
	}

	next, accepted := m.sess.Transcript.Submit(raw, time.Now())
	if !accepted {
		// One question at a time; the draft stays in the input.
		return m, nil
	}

	m.sess.Transcript = next
	m.input.SetValue("")
	m.scrollOff = 0
	slog.Info("query submitted", "chars", len(raw))
	return m, tea.Batch(m.runQuery(raw), m.spin.Tick)
}

func (m chatModel) runSlashCommand(raw string) (chatModel, tea.Cmd) {
	fields := strings.Fields(raw)

	switch fields[0] {
	case "/upload":
		if len(fields) < 2 {
			m.notice = "Usage: /upload <path> [path...]"
			return m, nil
		}
		return m.enqueueFiles(fields[1:])

	case "/remove":
		if len(fields) != 2 {
			m.notice = "Usage: /remove <job-id>"
			return m, nil
		}
		m.sess.Uploads = m.sess.Uploads.Remove(fields[1])
		m.input.SetValue("")
		return m, nil

	default:
		m.notice = fmt.Sprintf("Unknown command: %s", fields[0])
		return m, nil
	}
}

// enqueueFiles stages the given paths as an upload batch and dispatches it
// in a single request. Jobs appear as pending before any I/O happens.
func (m chatModel) enqueueFiles(paths []string) (chatModel, tea.Cmd) {
	files, err := collectFiles(paths, m.cfg)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	if len(files) == 0 {
		m.notice = fmt.Sprintf("No files with allowed extensions (%s) found.",
			strings.Join(m.cfg.AllowedExtensions, " "))
		return m, nil
	}

	now := time.Now()
	uploads, batch := m.sess.Uploads.Enqueue(files, now)
	m.sess.Uploads = uploads.Dispatch(batch, now)
	m.input.SetValue("")
	slog.Info("upload batch dispatched", "jobs", len(batch.JobIDs))
	return m, tea.Batch(m.runUpload(batch, files), m.spin.Tick)
}

// busy reports whether anything is waiting on the backend.
func (m chatModel) busy() bool {
	if m.sess.Transcript.Awaiting() {
		return true
	}
	for _, j := range m.sess.Uploads.Jobs() {
		if j.Status == models.StatusProcessing {
			return true
		}
	}
	return false
}

// =============================================================================
// COMMANDS (run off the update loop, resume via typed messages)
// =============================================================================

func (m chatModel) runQuery(question string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		res, err := b.Query(context.Background(), question)
		return queryResultMsg{res: res, err: err}
	}
}

func (m chatModel) runUpload(batch session.Batch, files []models.FileInfo) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		res, err := b.Upload(context.Background(), files, nil)
		return uploadResultMsg{batch: batch, uploaded: res.Uploaded(), err: err}
	}
}

func (m chatModel) refreshSummary() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		h, err := b.Health(context.Background())
		return summaryMsg{summary: h.Summary(), err: err}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat display.
func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.pickerOpen {
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render("enter select · esc cancel"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.renderTranscript())
	b.WriteString("\n")

	if jobs := m.renderJobs(); jobs != "" {
		b.WriteString(jobs)
		b.WriteString("\n")
	}

	b.WriteString(m.renderSummaryLine())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(m.theme.noticeStyle().Render(m.notice))
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render("enter dismiss"))
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render("enter send · ctrl+o attach · pgup/pgdn scroll · ctrl+c quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m chatModel) renderHeader() string {
	header := m.theme.assistantStyle().Render("docchat") +
		m.theme.hintStyle().Render(" · "+m.addr)
	if m.banner {
		header += "  " + m.theme.completedStyle().Render(konamiBanner)
	}
	return header
}

// renderTranscript shows a window over the wrapped conversation, pinned to
// the latest entry unless the user scrolled up.
func (m chatModel) renderTranscript() string {
	lines := m.transcriptLines()
	visible := m.transcriptHeight()

	offset := m.scrollOff
	if max := len(lines) - visible; offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}

	end := len(lines) - offset
	start := end - visible
	if start < 0 {
		start = 0
	}

	return strings.Join(lines[start:end], "\n")
}

// transcriptLines renders every message and wraps the result to the
// current width.
func (m chatModel) transcriptLines() []string {
	var parts []string
	for _, msg := range m.sess.Transcript.Messages() {
		parts = append(parts, m.renderMessage(msg))
	}
	if m.sess.Transcript.Awaiting() {
		parts = append(parts, m.spin.View()+m.theme.hintStyle().Render("thinking"))
	}

	joined := strings.Join(parts, "\n\n")
	wrapped := lipgloss.NewStyle().Width(m.contentWidth()).Render(joined)
	return strings.Split(wrapped, "\n")
}

func (m chatModel) renderMessage(msg models.Message) string {
	label := m.theme.userStyle().Render("You")
	if msg.Role == models.RoleAssistant {
		label = m.theme.assistantStyle().Render("docchat")
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteString(m.theme.hintStyle().Render(" · " + msg.Timestamp.Format("15:04")))
	b.WriteString("\n")
	b.WriteString(msg.Content)

	for i, src := range msg.Sources {
		b.WriteString("\n")
		b.WriteString(m.theme.hintStyle().Render(
			fmt.Sprintf("  [%d] %s (page %d, %s)", i+1, src.Filename, src.Page, relevancePercent(src.Relevance))))
	}
	return b.String()
}

func (m chatModel) renderJobs() string {
	jobs := m.sess.Uploads.Jobs()
	if len(jobs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.statusStyle().Render("Uploads"))

	start := 0
	if len(jobs) > maxVisibleJobs {
		start = len(jobs) - maxVisibleJobs
		b.WriteString(m.theme.hintStyle().Render(fmt.Sprintf("  … %d earlier", start)))
	}

	for _, job := range jobs[start:] {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s %s %s  %s",
			m.theme.hintStyle().Render("["+job.ID+"]"),
			job.Name,
			m.theme.hintStyle().Render("("+models.FormatSize(job.SizeBytes)+")"),
			m.theme.jobStatusView(job.Status)))
	}
	return b.String()
}

func (m chatModel) renderSummaryLine() string {
	s, ok := m.sess.Summary.Summary()
	if !ok {
		return m.theme.hintStyle().Render("collection stats unavailable")
	}
	return m.theme.hintStyle().Render(fmt.Sprintf("%d documents · %d chunks · refreshed %s",
		s.DocumentCount, s.ChunkCount, m.sess.Summary.RefreshedAt().Format("15:04:05")))
}

func (m chatModel) contentWidth() int {
	if m.width > 4 {
		return m.width - 2
	}
	return 78
}

// transcriptHeight is the window height left over for the conversation.
func (m chatModel) transcriptHeight() int {
	if m.height == 0 {
		return 12
	}

	chrome := 6 // header, summary, input, footer, separators
	if jobs := len(m.sess.Uploads.Jobs()); jobs > 0 {
		visible := jobs
		if visible > maxVisibleJobs {
			visible = maxVisibleJobs
		}
		chrome += visible + 2
	}

	h := m.height - chrome
	if h < 3 {
		return 3
	}
	return h
}

func (m chatModel) maxScroll() int {
	max := len(m.transcriptLines()) - m.transcriptHeight()
	if max < 0 {
		return 0
	}
	return max
}
