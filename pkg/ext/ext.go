// Package ext provides optional extension functions for JSBinder binding
// expressions.
//
// Custom functions are unary: $name(arg) receives the single evaluated
// argument. The extension functions live in sub-packages grouped by
// category:
//   - extstring   – $upper, $lower, $capitalize, $camelCase, $kebabCase, …
//   - extnumeric  – $abs, $round, $trunc, $sign, $sum, $avg, $median, …
//   - extarray    – $first, $last, $count, $flatten, $unique, $compact, …
//   - extobject   – $keys, $values, $entries, $size
//   - exttypes    – $isString, $isArray, $isEmpty, $typeOf, …
//   - extdatetime – $fromMillis, $toMillis, $year, $month, $weekday, …
//   - extcrypto   – $uuid, $hash, $base64, $unbase64
//   - extformat   – $json, $fromJson
//
// # Integration – all extensions at once
//
//	reg := functions.NewRegistry()
//	_ = ext.RegisterAll(reg)
//	b := binder.New(binder.WithFunctions(reg))
//
// # Integration – by category
//
//	_ = reg.RegisterAll(extstring.All()...)
//
// # Integration – single function from a sub-package
//
//	_ = reg.RegisterAll(extstring.Upper())
package ext

import (
	"github.com/anders-frisk/JSBinder/pkg/ext/extarray"
	"github.com/anders-frisk/JSBinder/pkg/ext/extcrypto"
	"github.com/anders-frisk/JSBinder/pkg/ext/extdatetime"
	"github.com/anders-frisk/JSBinder/pkg/ext/extformat"
	"github.com/anders-frisk/JSBinder/pkg/ext/extnumeric"
	"github.com/anders-frisk/JSBinder/pkg/ext/extobject"
	"github.com/anders-frisk/JSBinder/pkg/ext/extstring"
	"github.com/anders-frisk/JSBinder/pkg/ext/exttypes"
	"github.com/anders-frisk/JSBinder/pkg/functions"
)

// All returns every extension function definition.
func All() []functions.Def {
	var all []functions.Def
	all = append(all, extstring.All()...)
	all = append(all, extnumeric.All()...)
	all = append(all, extarray.All()...)
	all = append(all, extobject.All()...)
	all = append(all, exttypes.All()...)
	all = append(all, extdatetime.All()...)
	all = append(all, extcrypto.All()...)
	all = append(all, extformat.All()...)
	return all
}

// RegisterAll registers every extension function into reg.
func RegisterAll(reg *functions.Registry) error {
	return reg.RegisterAll(All()...)
}
