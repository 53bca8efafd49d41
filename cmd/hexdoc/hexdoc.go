/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// hexdoc renders a documented ruleset (YAML: name, doc, rules) as an
// HTML page on stdout.
//
//	hexdoc -d life.yaml > life.html
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Comcast/hexi/tools"
)

func main() {
	var (
		filename = flag.String("d", "", "ruleset YAML file")
		cssFiles = flag.String("css", "", "comma-separated CSS hrefs")
		withData = flag.Bool("data", false, "embed concrete rules as JSON")
	)
	flag.Parse()

	if *filename == "" {
		fmt.Fprintf(os.Stderr, "need -d FILENAME\n")
		os.Exit(1)
	}

	var css []string
	if *cssFiles != "" {
		css = strings.Split(*cssFiles, ",")
	}

	if err := tools.ReadAndRenderRulesPage(*filename, css, os.Stdout, *withData); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
