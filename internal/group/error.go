package group

import "github.com/nicolagi/hintful/internal/diagnostic"

func internalf(typeMethod, format string, a ...interface{}) error {
	return diagnostic.Internalf("github.com/nicolagi/hintful/internal/group."+typeMethod+": "+format, a...)
}
