/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package render

import (
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// Funcs returns the function map available to every template.
//
//	${pascal .entityName}            UserAccount
//	${camel .entityName}             userAccount
//	${snake .entityName}             user_account
//	${kebab .entityName}             user-account
//	${plural .entityName}            UserAccounts
//	${packagePath .basePackage}      com/example/shop
//	${if not (last $i $.fields)}, ${end}
//	${if has . "description"}...${end}
//	${default "8080" .port}
//	${join ", " .modules}
func Funcs() template.FuncMap {
	return template.FuncMap{
		"pascal":      strcase.ToCamel,
		"camel":       strcase.ToLowerCamel,
		"snake":       strcase.ToSnake,
		"kebab":       strcase.ToKebab,
		"upper":       strings.ToUpper,
		"lower":       strings.ToLower,
		"plural":      inflection.Plural,
		"singular":    inflection.Singular,
		"packagePath": PackagePath,
		"last":        isLast,
		"has":         has,
		"default":     defaultValue,
		"join":        join,
	}
}

// PackagePath converts a Java package name to a slash separated directory
// path.
func PackagePath(pkg string) string {
	return strings.ReplaceAll(strings.Trim(pkg, "."), ".", "/")
}

// isLast reports whether index i addresses the final element of list.
func isLast(i int, list any) (bool, error) {
	v := reflect.ValueOf(list)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.String, reflect.Map:
		return i == v.Len()-1, nil
	case reflect.Invalid:
		return false, fmt.Errorf("last: nil list")
	default:
		return false, fmt.Errorf("last: cannot take length of %s", v.Kind())
	}
}

// has reports whether the map m holds key. Missing maps report false.
func has(m any, key string) bool {
	v := reflect.ValueOf(m)
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return false
	}
	return v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key())).IsValid()
}

// defaultValue returns given unless it is the zero value, in which case def
// is returned.
func defaultValue(def, given any) any {
	if given == nil {
		return def
	}
	v := reflect.ValueOf(given)
	if v.IsZero() {
		return def
	}
	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Map) && v.Len() == 0 {
		return def
	}
	return given
}

func join(sep string, list any) (string, error) {
	v := reflect.ValueOf(list)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return "", fmt.Errorf("join: expected a list, got %T", list)
	}
	parts := make([]string, v.Len())
	for i := range v.Len() {
		parts[i] = fmt.Sprint(v.Index(i).Interface())
	}
	return strings.Join(parts, sep), nil
}
