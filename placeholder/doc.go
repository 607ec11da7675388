// Package placeholder implements the {$name} template mini-language: finding
// tags in text, scanning documents for the set of distinct tag names and
// ordering those names for presentation as form fields.
//
// Grammar:
//
//	{$<name>}
//	{$<name>:b}   bold hint
//	{$<name>:i}   italic hint
//
// Names consist of ASCII letters, Cyrillic letters, digits and underscore.
// A Cyrillic letter typed in decomposed form is accepted when NFC composes
// it into a single letter; any other combining mark rejects the tag.
// Hints are recognised so that the whole tag is matched and removed, but
// they carry no formatting.
package placeholder
