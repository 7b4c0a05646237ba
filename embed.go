package asistenkepsek

import "embed"

// TemplateFS holds the page templates: the layout head, the home page, and the partials for the
// settings sidebar, the template forms and the chat panel.
//
//go:embed templates/*
var TemplateFS embed.FS

// StaticFS holds app.js, which posts the forms and swaps in chat panels pushed over SSE, and style.css.
//
//go:embed static/*
var StaticFS embed.FS
