package webui

import (
	"html/template"

	"vistoria/internal/production"
)

var pageFuncs = template.FuncMap{
	"thousands": production.FormatThousands,
	"decimal":   production.FormatDecimal,
	"date":      fmtDate,
	"has": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
}
