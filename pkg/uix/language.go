package uix

import "fmt"

// Language is the locale an item belongs to. Unknown values are kept as-is.
type Language uint16

const (
	Default Language = iota
	English
	Japanese
	German
	French
	Spanish
	Italian
	Korean
	TraditionalChinese
	Brazilian
)

func (l Language) String() string {
	switch l {
	case Default:
		return "Default"
	case English:
		return "English"
	case Japanese:
		return "Japanese"
	case German:
		return "German"
	case French:
		return "French"
	case Spanish:
		return "Spanish"
	case Italian:
		return "Italian"
	case Korean:
		return "Korean"
	case TraditionalChinese:
		return "TraditionalChinese"
	case Brazilian:
		return "Brazilian"
	default:
		return fmt.Sprintf("Language(%d)", uint16(l))
	}
}

// Known reports whether l is one of the ten documented locales.
func (l Language) Known() bool {
	return l <= Brazilian
}
