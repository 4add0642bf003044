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

package docs

import (
	"strings"
	"testing"
)

func TestBuildMarkdown(t *testing.T) {
	md := string(buildMarkdown(bank()))
	for _, want := range []string{
		"# Module reference",
		"| example.com/bank/Teller | `example.com/bank` | 2 |",
		"| example.com/bank/Vault | `example.com/bank` | 0 |",
		"## example.com/bank/Teller",
		"### Deposit",
		"```go\nfunc Deposit(to string, amount Compact[uint64])\n```",
		"Deposit adds amount to the named account.",
		"### Transfer",
		"```go\nfunc Transfer(from string, to string, amount Compact[uint64])\n```",
		"## example.com/bank/Vault",
		"Declares no call block.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown does not contain %q:\n%s", want, md)
		}
	}
}

func TestRenderPage(t *testing.T) {
	page, err := renderPage(bank())
	if err != nil {
		t.Fatal(err)
	}
	html := string(page)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>ModKit module reference</title>",
		"<h2>example.com/bank/Teller</h2>",
		"<h3>Deposit</h3>",
		"<table>",
		"<pre",
		"Deposit adds amount to the named account.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page does not contain %q:\n%s", want, html)
		}
	}
}
