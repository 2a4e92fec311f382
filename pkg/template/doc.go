// Package template implements placeholder substitution over immutable job
// templates. A Template holds static text with {{ KEY }} tokens; a
// ParameterSet supplies values; Render produces the finished document with
// every token replaced verbatim. There is no escaping and no recursion: the
// renderer is a configuration-templating tool, not a security boundary.
package template
