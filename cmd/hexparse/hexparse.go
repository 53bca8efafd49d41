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

// hexparse parses HexiDirect rules and prints the canonical form and
// the expanded concrete variants.
//
//	echo 'a% => a%1' | hexparse
//	hexparse -r '_[t.] => z.1' -json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Comcast/hexi/core"
	. "github.com/Comcast/hexi/util/testutil"
)

func main() {
	var (
		rules   = flag.String("r", "", "rules text (default: read stdin)")
		asJSON  = flag.Bool("json", false, "emit concrete rules as JSON")
		expand  = flag.Bool("expand", true, "print concrete variants")
		verbose = flag.Bool("v", false, "print group annotations")
	)
	flag.Parse()

	text := *rules
	if text == "" {
		bs, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
		text = string(bs)
	}

	parsed, err := core.Parse(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	fmt.Println(core.Format(parsed))

	if !*expand {
		return
	}

	concrete, err := core.Expand(parsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	if *asJSON {
		fmt.Println(JS(concrete))
		return
	}

	for _, r := range concrete {
		if *verbose {
			fmt.Printf("  %s (group %d)\n", r, r.Group)
		} else {
			fmt.Printf("  %s\n", r)
		}
	}
}
