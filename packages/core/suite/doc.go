// Package suite reads webspec suite files.
//
// A suite is a YAML document naming one page and the checks to run against
// it:
//
//	name: homepage
//	url: ./index.html
//	waitFor:
//	  selector: "#app"
//	  timeout: 5s
//	checks:
//	  - name: greeting
//	    selector: "#hello"
//	    expect: to contain text
//	    args: ["Hello Webdriver"]
//
// Documents are validated against an embedded JSON Schema before decoding.
// Arguments written as /pattern/ (optionally followed by i, m or s flags)
// are compiled to regular expressions.
package suite
