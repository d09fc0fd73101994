package cnst

const (
	// LangPT is the Brazilian Portuguese language code
	LangPT = "pt"
	// LangEN is the English language code
	LangEN = "en"
	// LangDefault is the portal's default language
	LangDefault = LangPT

	// XLang is the header carrying the caller's language preference
	XLang = "X-Lang"
)
