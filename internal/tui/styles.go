package tui

import "github.com/rgehrsitz/fireplan/internal/tui/tuistyles"

// Re-export styles from tuistyles to avoid import cycles
var (
	TitleStyle       = tuistyles.TitleStyle
	SubtitleStyle    = tuistyles.SubtitleStyle
	StatusBarStyle   = tuistyles.StatusBarStyle
	TabStyle         = tuistyles.TabStyle
	ActiveTabStyle   = tuistyles.ActiveTabStyle
	TableHeaderStyle = tuistyles.TableHeaderStyle
	TableCellStyle   = tuistyles.TableCellStyle
	ErrorStyle       = tuistyles.ErrorStyle
	InfoStyle        = tuistyles.InfoStyle
)
