package captions

import (
	"fmt"
	"strings"

	"github.com/mgaillard/shortforge/internal/types"
)

// Style selects the ASS look of one platform's captions.
type Style struct {
	FontName        string
	FontSize        int
	HookFontSize    int
	CTAFontSize     int
	MarginV         int
	PlayResX        int
	PlayResY        int
}

// DefaultStyle is the vertical-canvas look shared by all platforms unless
// a profile overrides it.
func DefaultStyle() Style {
	return Style{
		FontName:     "Arial",
		FontSize:     48,
		HookFontSize: 64,
		CTAFontSize:  56,
		MarginV:      50,
		PlayResX:     1080,
		PlayResY:     1920,
	}
}

// RenderSRT renders the cue sequence as an SRT file body.
func RenderSRT(cues []types.CaptionCue) string {
	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n", i+1)
		b.WriteString(FormatSRTTime(c.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatSRTTime(c.End))
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(c.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderASS renders the cue sequence as an ASS file with separate Default,
// Hook and CTA styles so the three acts read differently on screen.
func RenderASS(cues []types.CaptionCue, st Style) string {
	if st.FontName == "" {
		st = DefaultStyle()
	}
	var b strings.Builder
	fmt.Fprintf(&b, `[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 1
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,1,0,0,0,100,100,0,0,1,3,1,2,20,20,%d,1
Style: Hook,%s,%d,&H0000FFFF,&H000000FF,&H00000000,&H80000000,1,0,0,0,100,100,0,0,1,4,2,2,20,20,%d,1
Style: CTA,%s,%d,&H0000FF00,&H000000FF,&H00000000,&H80000000,1,0,0,0,100,100,0,0,1,4,2,2,20,20,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`,
		st.PlayResX, st.PlayResY,
		st.FontName, st.FontSize, st.MarginV,
		st.FontName, st.HookFontSize, st.MarginV,
		st.FontName, st.CTAFontSize, st.MarginV,
	)
	for _, c := range cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			FormatASSTime(c.Start), FormatASSTime(c.End), styleName(c.Role), sanitizeASS(c.Text))
	}
	return b.String()
}

func styleName(role types.CueRole) string {
	switch role {
	case types.RoleHook:
		return "Hook"
	case types.RoleCTA:
		return "CTA"
	default:
		return "Default"
	}
}

// sanitizeASS keeps user text from being parsed as ASS override tags.
func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
