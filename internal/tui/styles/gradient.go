package styles

// RenderThemeGradient renders text in the current theme's primary to
// secondary gradient.
func RenderThemeGradient(text string, bold bool) string {
	t := CurrentTheme()
	return ApplyGradient(text, t.Primary, t.Secondary, bold)
}
