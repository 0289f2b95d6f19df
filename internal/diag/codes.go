package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная диагностика
	UnknownCode Code = 0

	// Структурные правила (шаблоны по тексту документа)
	StrInfo            Code = 1000
	StrNavWithoutList  Code = 1001
	StrFooterPlacement Code = 1002
	StrMainRole        Code = 1003
	StrHeaderRole      Code = 1004
	StrNavRole         Code = 1005
	StrAsideRole       Code = 1006
	StrFooterRole      Code = 1007
	StrSpanFont        Code = 1008
	StrFixedPxSizing   Code = 1101
	StrInputName       Code = 1201
	StrInputType       Code = 1202
	StrFontSizeUnit    Code = 1301
	StrDivButton       Code = 1401
	StrDivForm         Code = 1402
	StrButtonLabel     Code = 1501
	StrInputLabel      Code = 1502
	StrTextareaLabel   Code = 1503
	StrSelectLabel     Code = 1504
	StrStatusLive      Code = 1601

	// WHATWG-валидатор
	WhaInfo   Code = 2000
	WhaMapped Code = 2001

	// W3C Nu-валидатор
	W3CInfo   Code = 3000
	W3CMapped Code = 3001

	// Контраст
	ConInfo     Code = 4000
	ConContrast Code = 4001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:        "Unknown finding",
		StrInfo:            "Structural information",
		StrNavWithoutList:  "Navigation links are not structured as a list",
		StrFooterPlacement: "Footer is not the last landmark or is duplicated",
		StrMainRole:        "Main landmark without role",
		StrHeaderRole:      "Header landmark without role",
		StrNavRole:         "Navigation landmark without role",
		StrAsideRole:       "Aside landmark without role",
		StrFooterRole:      "Footer landmark without role",
		StrSpanFont:        "Span styled with font properties",
		StrFixedPxSizing:   "Layout property sized in px",
		StrInputName:       "Input without name",
		StrInputType:       "Form control without type",
		StrFontSizeUnit:    "Font size in absolute units",
		StrDivButton:       "Div used as a button",
		StrDivForm:         "Div used as a form",
		StrButtonLabel:     "Button without accessible name",
		StrInputLabel:      "Input without accessible name",
		StrTextareaLabel:   "Textarea without accessible name",
		StrSelectLabel:     "Select without accessible name",
		StrStatusLive:      "Status message without aria-live",
		WhaInfo:            "WHATWG validator information",
		WhaMapped:          "WHATWG validator finding",
		W3CInfo:            "W3C validator information",
		W3CMapped:          "W3C validator finding",
		ConInfo:            "Contrast information",
		ConContrast:        "Insufficient color contrast",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("WHA%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("W3C%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CON%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
