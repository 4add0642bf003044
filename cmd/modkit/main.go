// Copyright 2023 The ModKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Modkit generates and inspects dispatch code for modkit modules. Run
// "modkit -help" for more information.
package main

import (
	"flag"
	"fmt"
	"os"

	itool "github.com/modkit/modkit/internal/tool"
	"github.com/modkit/modkit/internal/tool/docs"
	"github.com/modkit/modkit/internal/tool/generate"
)

const usage = `USAGE

  modkit generate [packages]  // generate dispatch code
  modkit describe [packages]  // describe modules as a table
  modkit docs     [packages]  // render module docs as HTML
  modkit version              // show modkit version

DESCRIPTION

  Use the "modkit" command to generate and inspect the dispatch code of
  modkit modules. Run "modkit help <subcommand>" for more information on a
  subcommand.
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	var err error
	switch cmd {
	case "generate":
		err = runGenerate(args)
	case "describe":
		err = runDescribe(args)
	case "docs":
		err = runDocs(args)
	case "version":
		fmt.Println(itool.Version("modkit"))
	case "help":
		err = runHelp(args)
	default:
		err = fmt.Errorf("modkit %s: unknown subcommand. See 'modkit help'", cmd)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runGenerate(args []string) error {
	flags := flag.NewFlagSet("generate", flag.ExitOnError)
	flags.Usage = func() { fmt.Fprintln(os.Stderr, generate.Usage) }
	flags.Parse(args)
	return generate.Generate(".", flags.Args(), generate.Options{})
}

func runDescribe(args []string) error {
	flags := flag.NewFlagSet("describe", flag.ExitOnError)
	filter := flags.String("filter", "", "Show only calls matching this CEL filter")
	flags.Usage = func() { fmt.Fprintln(os.Stderr, docs.DescribeUsage) }
	flags.Parse(args)
	return docs.Describe(os.Stdout, ".", flags.Args(), docs.DescribeOptions{Filter: *filter})
}

func runDocs(args []string) error {
	flags := flag.NewFlagSet("docs", flag.ExitOnError)
	output := flags.String("output", "modkit_docs.html", "Name of the generated HTML file")
	watch := flags.Bool("watch", false, "Re-render whenever a source file changes")
	flags.Usage = func() { fmt.Fprintln(os.Stderr, docs.DocsUsage) }
	flags.Parse(args)
	return docs.Docs(".", flags.Args(), docs.DocsOptions{Output: *output, Watch: *watch})
}

func runHelp(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stdout, usage)
		return nil
	}
	if len(args) > 1 {
		return fmt.Errorf("help: too many arguments. Try 'modkit help %s'", args[0])
	}
	switch cmd := args[0]; cmd {
	case "generate":
		fmt.Fprintln(os.Stdout, generate.Usage)
	case "describe":
		fmt.Fprintln(os.Stdout, docs.DescribeUsage)
	case "docs":
		fmt.Fprintln(os.Stdout, docs.DocsUsage)
	case "version":
		fmt.Fprintln(os.Stdout, "Show the modkit version.")
	default:
		return fmt.Errorf("help: unknown subcommand %q. See 'modkit help'", cmd)
	}
	return nil
}
