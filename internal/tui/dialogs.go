package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/ingest"
	"github.com/billie-coop/roster/internal/tui/styles"
)

// dialog is a modal that owns the keyboard until it closes. Update
// reports whether the dialog is done; the returned command runs either
// way.
type dialog interface {
	ID() string
	Update(msg tea.Msg) (done bool, cmd tea.Cmd)
	View(width int) string
}

// dialogFrame wraps content in the shared modal chrome.
func dialogFrame(title, content string, width int) string {
	theme := styles.CurrentTheme()
	boxWidth := width - 8
	if boxWidth > 76 {
		boxWidth = 76
	}
	if boxWidth < 30 {
		boxWidth = 30
	}

	header := theme.S().Title.Render(title)
	body := lipgloss.JoinVertical(lipgloss.Left, header, "", content)
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderFocus).
		Padding(1, 2).
		Width(boxWidth).
		Render(body)
}

// fieldLabel renders one form label, highlighted when focused.
func fieldLabel(label string, focused bool) string {
	theme := styles.CurrentTheme()
	if focused {
		return theme.S().Subtitle.Render(label)
	}
	return theme.S().Muted.Render(label)
}

// --- provider form ---

// providerForm adds or edits one provider.
type providerForm struct {
	id       string // empty when adding
	isValid  bool   // carried through edits untouched
	name     *textInput
	endpoint *textInput
	apiKey   *textInput
	kindIdx  int
	focus    int
	errText  string
	submit   func(catalog.Provider) (tea.Cmd, error)
}

const (
	providerFieldName = iota
	providerFieldEndpoint
	providerFieldKind
	providerFieldKey
	providerFieldCount
)

func newProviderForm(p catalog.Provider, submit func(catalog.Provider) (tea.Cmd, error)) *providerForm {
	f := &providerForm{
		id:       p.ID,
		isValid:  p.IsValid,
		name:     newTextInput("OpenRouter"),
		endpoint: newTextInput("https://api.example.com"),
		apiKey:   newTextInput("${OPENROUTER_API_KEY}"),
		submit:   submit,
	}
	f.name.SetValue(p.Name)
	f.endpoint.SetValue(p.Endpoint)
	f.apiKey.SetValue(p.APIKey)
	for i, k := range catalog.Kinds() {
		if k == p.Type {
			f.kindIdx = i
		}
	}
	f.name.Focus()
	return f
}

func (f *providerForm) ID() string { return "provider-form" }

func (f *providerForm) setFocus(focus int) {
	f.focus = (focus + providerFieldCount) % providerFieldCount
	f.name.Blur()
	f.endpoint.Blur()
	f.apiKey.Blur()
	switch f.focus {
	case providerFieldName:
		f.name.Focus()
	case providerFieldEndpoint:
		f.endpoint.Focus()
	case providerFieldKey:
		f.apiKey.Focus()
	}
}

func (f *providerForm) Update(msg tea.Msg) (bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false, nil
	}

	switch keyMsg.String() {
	case "esc":
		return true, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return false, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return false, nil
	case "enter":
		provider := catalog.Provider{
			ID:       f.id,
			Name:     strings.TrimSpace(f.name.Value()),
			Endpoint: strings.TrimSpace(f.endpoint.Value()),
			Type:     catalog.Kinds()[f.kindIdx],
			APIKey:   strings.TrimSpace(f.apiKey.Value()),
			IsValid:  f.isValid,
		}
		cmd, err := f.submit(provider)
		if err != nil {
			f.errText = err.Error()
			return false, nil
		}
		return true, cmd
	case "left":
		if f.focus == providerFieldKind {
			f.kindIdx = (f.kindIdx - 1 + len(catalog.Kinds())) % len(catalog.Kinds())
			return false, nil
		}
	case "right":
		if f.focus == providerFieldKind {
			f.kindIdx = (f.kindIdx + 1) % len(catalog.Kinds())
			return false, nil
		}
	}

	f.name.Update(msg)
	f.endpoint.Update(msg)
	f.apiKey.Update(msg)
	return false, nil
}

func (f *providerForm) View(width int) string {
	theme := styles.CurrentTheme()

	kind := string(catalog.Kinds()[f.kindIdx])
	kindView := theme.S().Text.Render("◂ " + kind + " ▸")
	if f.focus != providerFieldKind {
		kindView = theme.S().Muted.Render("  " + kind)
	}

	lines := []string{
		fieldLabel("Name", f.focus == providerFieldName),
		f.name.View(),
		"",
		fieldLabel("Endpoint", f.focus == providerFieldEndpoint),
		f.endpoint.View(),
		"",
		fieldLabel("Type", f.focus == providerFieldKind),
		kindView,
		"",
		fieldLabel("API key", f.focus == providerFieldKey),
		f.apiKey.View(),
	}
	if f.errText != "" {
		lines = append(lines, "", theme.S().Error.Render(styles.ErrorIcon+" "+f.errText))
	}
	lines = append(lines, "", theme.S().Subtle.Render("enter save · esc cancel · tab next field"))

	title := "Add provider"
	if f.id != "" {
		title = "Edit provider"
	}
	return dialogFrame(title, lipgloss.JoinVertical(lipgloss.Left, lines...), width)
}

// --- model form ---

// modelForm adds or edits one model, with fuzzy catalog suggestions
// while the model id field is being typed.
type modelForm struct {
	id        string
	name      *textInput
	modelID   *textInput
	roles     *textInput
	maxTokens *textInput
	providers []catalog.Provider
	provIdx   int
	focus     int
	errText   string
	submit    func(catalog.Model) (tea.Cmd, error)
}

const (
	modelFieldModelID = iota
	modelFieldName
	modelFieldProvider
	modelFieldRoles
	modelFieldTokens
	modelFieldCount
)

func newModelForm(m catalog.Model, providers []catalog.Provider, submit func(catalog.Model) (tea.Cmd, error)) *modelForm {
	f := &modelForm{
		id:        m.ID,
		name:      newTextInput("Claude Sonnet"),
		modelID:   newTextInput("claude-sonnet-4"),
		roles:     newTextInput("main, fallback"),
		maxTokens: newTextInput("64000"),
		providers: providers,
		submit:    submit,
	}
	f.name.SetValue(m.Name)
	f.modelID.SetValue(m.ModelID)
	if m.MaxTokens > 0 {
		f.maxTokens.SetValue(strconv.FormatInt(m.MaxTokens, 10))
	}
	roles := make([]string, 0, len(m.AllowedRoles))
	for _, r := range m.AllowedRoles {
		roles = append(roles, string(r))
	}
	f.roles.SetValue(strings.Join(roles, ", "))
	for i, p := range providers {
		if p.ID == m.ProviderID {
			f.provIdx = i
		}
	}
	f.modelID.Focus()
	return f
}

func (f *modelForm) ID() string { return "model-form" }

func (f *modelForm) setFocus(focus int) {
	f.focus = (focus + modelFieldCount) % modelFieldCount
	f.modelID.Blur()
	f.name.Blur()
	f.roles.Blur()
	f.maxTokens.Blur()
	switch f.focus {
	case modelFieldModelID:
		f.modelID.Focus()
	case modelFieldName:
		f.name.Focus()
	case modelFieldRoles:
		f.roles.Focus()
	case modelFieldTokens:
		f.maxTokens.Focus()
	}
}

func (f *modelForm) suggestions() []catalog.Entry {
	query := strings.TrimSpace(f.modelID.Value())
	if query == "" || f.focus != modelFieldModelID {
		return nil
	}
	matches := catalog.BuiltinCatalog().Search(query)
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches
}

func (f *modelForm) Update(msg tea.Msg) (bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false, nil
	}

	switch keyMsg.String() {
	case "esc":
		return true, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return false, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return false, nil
	case "ctrl+y":
		if s := f.suggestions(); len(s) > 0 {
			f.modelID.SetValue(s[0].ModelID)
			if f.name.Value() == "" {
				f.name.SetValue(s[0].Name)
			}
		}
		return false, nil
	case "enter":
		model, err := f.buildModel()
		if err != nil {
			f.errText = err.Error()
			return false, nil
		}
		cmd, err := f.submit(model)
		if err != nil {
			f.errText = err.Error()
			return false, nil
		}
		return true, cmd
	case "left":
		if f.focus == modelFieldProvider && len(f.providers) > 0 {
			f.provIdx = (f.provIdx - 1 + len(f.providers)) % len(f.providers)
			return false, nil
		}
	case "right":
		if f.focus == modelFieldProvider && len(f.providers) > 0 {
			f.provIdx = (f.provIdx + 1) % len(f.providers)
			return false, nil
		}
	}

	f.modelID.Update(msg)
	f.name.Update(msg)
	f.roles.Update(msg)
	f.maxTokens.Update(msg)
	return false, nil
}

func (f *modelForm) buildModel() (catalog.Model, error) {
	model := catalog.Model{
		ID:      f.id,
		ModelID: strings.TrimSpace(f.modelID.Value()),
		Name:    strings.TrimSpace(f.name.Value()),
	}
	if len(f.providers) > 0 {
		model.ProviderID = f.providers[f.provIdx].ID
	}

	for _, part := range strings.Split(f.roles.Value(), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role := catalog.Role(part)
		if !role.Valid() {
			return catalog.Model{}, fmt.Errorf("unknown role %q (want main, fallback, or research)", part)
		}
		model.AllowedRoles = append(model.AllowedRoles, role)
	}

	if raw := strings.TrimSpace(f.maxTokens.Value()); raw != "" {
		tokens, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tokens < 0 {
			return catalog.Model{}, fmt.Errorf("max tokens must be a non-negative number")
		}
		model.MaxTokens = tokens
	}
	return model, nil
}

func (f *modelForm) View(width int) string {
	theme := styles.CurrentTheme()

	providerName := "(no providers)"
	if len(f.providers) > 0 {
		providerName = f.providers[f.provIdx].Name
	}
	providerView := theme.S().Text.Render("◂ " + providerName + " ▸")
	if f.focus != modelFieldProvider {
		providerView = theme.S().Muted.Render("  " + providerName)
	}

	lines := []string{
		fieldLabel("Model ID", f.focus == modelFieldModelID),
		f.modelID.View(),
	}
	for _, s := range f.suggestions() {
		lines = append(lines, theme.S().Subtle.Render(fmt.Sprintf("  %s %s (%s)", styles.HintIcon, s.ModelID, s.Name)))
	}
	if len(f.suggestions()) > 0 {
		lines = append(lines, theme.S().Subtle.Render("  ctrl+y to take the first match"))
	}
	lines = append(lines,
		"",
		fieldLabel("Name", f.focus == modelFieldName),
		f.name.View(),
		"",
		fieldLabel("Provider", f.focus == modelFieldProvider),
		providerView,
		"",
		fieldLabel("Roles", f.focus == modelFieldRoles),
		f.roles.View(),
		"",
		fieldLabel("Max tokens", f.focus == modelFieldTokens),
		f.maxTokens.View(),
	)
	if f.errText != "" {
		lines = append(lines, "", theme.S().Error.Render(styles.ErrorIcon+" "+f.errText))
	}
	lines = append(lines, "", theme.S().Subtle.Render("enter save · esc cancel · tab next field"))

	title := "Add model"
	if f.id != "" {
		title = "Edit model"
	}
	return dialogFrame(title, lipgloss.JoinVertical(lipgloss.Left, lines...), width)
}

// --- path prompt ---

// promptDialog asks for one line of text.
type promptDialog struct {
	id     string
	title  string
	input  *textInput
	submit func(string) tea.Cmd
}

func newPromptDialog(id, title, placeholder, value string, submit func(string) tea.Cmd) *promptDialog {
	input := newTextInput(placeholder)
	input.SetValue(value)
	input.Focus()
	return &promptDialog{id: id, title: title, input: input, submit: submit}
}

func (d *promptDialog) ID() string { return d.id }

func (d *promptDialog) Update(msg tea.Msg) (bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false, nil
	}
	switch keyMsg.String() {
	case "esc":
		return true, nil
	case "enter":
		value := strings.TrimSpace(d.input.Value())
		if value == "" {
			return false, nil
		}
		return true, d.submit(value)
	}
	d.input.Update(msg)
	return false, nil
}

func (d *promptDialog) View(width int) string {
	theme := styles.CurrentTheme()
	content := lipgloss.JoinVertical(lipgloss.Left,
		d.input.View(),
		"",
		theme.S().Subtle.Render("enter confirm · esc cancel"),
	)
	return dialogFrame(d.title, content, width)
}

// --- confirm ---

// confirmDialog asks a yes/no question.
type confirmDialog struct {
	id      string
	title   string
	message string
	onYes   func() tea.Cmd
}

func newConfirmDialog(id, title, message string, onYes func() tea.Cmd) *confirmDialog {
	return &confirmDialog{id: id, title: title, message: message, onYes: onYes}
}

func (d *confirmDialog) ID() string { return d.id }

func (d *confirmDialog) Update(msg tea.Msg) (bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false, nil
	}
	switch keyMsg.String() {
	case "y", "enter":
		return true, d.onYes()
	case "n", "esc":
		return true, nil
	}
	return false, nil
}

func (d *confirmDialog) View(width int) string {
	theme := styles.CurrentTheme()
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.S().Text.Render(d.message),
		"",
		theme.S().Subtle.Render("y/enter confirm · n/esc cancel"),
	)
	return dialogFrame(d.title, content, width)
}

// --- ingest review ---

// ingestDialog shows scanned provider proposals for confirmation.
type ingestDialog struct {
	proposals []ingest.Proposal
	apply     func([]ingest.Proposal) tea.Cmd
}

func newIngestDialog(proposals []ingest.Proposal, apply func([]ingest.Proposal) tea.Cmd) *ingestDialog {
	return &ingestDialog{proposals: proposals, apply: apply}
}

func (d *ingestDialog) ID() string { return "ingest" }

func (d *ingestDialog) Update(msg tea.Msg) (bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false, nil
	}
	switch keyMsg.String() {
	case "y", "enter":
		return true, d.apply(d.proposals)
	case "n", "esc":
		return true, nil
	}
	return false, nil
}

func (d *ingestDialog) View(width int) string {
	theme := styles.CurrentTheme()

	lines := make([]string, 0, len(d.proposals)+2)
	for _, p := range d.proposals {
		lines = append(lines, theme.S().Text.Render(
			fmt.Sprintf("%s %s  %s", styles.HintIcon, pad(p.Provider.Name, 20), p.Provider.Endpoint)))
		lines = append(lines, theme.S().Subtle.Render("   from "+p.Source))
	}
	lines = append(lines, "", theme.S().Subtle.Render("y/enter add all · n/esc cancel"))

	title := fmt.Sprintf("Found %d provider(s) in local configs", len(d.proposals))
	return dialogFrame(title, lipgloss.JoinVertical(lipgloss.Left, lines...), width)
}
