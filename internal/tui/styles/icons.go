package styles

const (
	// General icons
	CheckIcon   string = "✓"
	ErrorIcon   string = "✗"
	WarningIcon string = "⚠"
	InfoIcon    string = "ℹ"
	HintIcon    string = "💡"
	LoadingIcon string = "⟳"
	ModelIcon   string = "🤖"

	// File icons
	DocumentIcon string = "📄"
	FolderIcon   string = "📁"
)
