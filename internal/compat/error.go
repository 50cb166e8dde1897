package compat

import "github.com/nicolagi/hintful/internal/diagnostic"

func internalf(typeMethod, format string, a ...interface{}) error {
	return diagnostic.Internalf("github.com/nicolagi/hintful/internal/compat."+typeMethod+": "+format, a...)
}
