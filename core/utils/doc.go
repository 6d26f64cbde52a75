// Package utils provides small conversion helpers shared by the importer packages.
// Most of them turn nullable dump fields (*string, nil meaning SQL NULL) into Go
// values with a silent zero-value fallback.
package utils
