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

package generator

import (
	"github.com/cowdogmoo/archgen/errors"
	"gopkg.in/yaml.v3"
)

// structure is a rendered structure definition.
//
//	directories:
//	  - domain/src/main/java/${packagePath .basePackage}/domain
//	  - infrastructure/driven-adapters
type structure struct {
	Directories []string `yaml:"directories"`
}

// parseStructure returns the cleaned directory list of a rendered
// structure definition.
func parseStructure(name, body string) ([]string, error) {
	var s structure
	if err := yaml.Unmarshal([]byte(body), &s); err != nil {
		return nil, errors.Wrap("parse structure definition", name, err)
	}
	dirs := make([]string, 0, len(s.Directories))
	for _, d := range s.Directories {
		clean, err := cleanTarget(d)
		if err != nil {
			return nil, errors.Wrap("parse structure definition", name, err)
		}
		dirs = append(dirs, clean)
	}
	return dirs, nil
}
