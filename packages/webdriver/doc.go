// Package webdriver defines the capabilities webspec consumes from a browser
// automation driver.
//
// A value is a page element when it implements Element and a browser session
// when it implements Session. Classification is structural: any driver whose
// handles expose these method sets can be used with the assertion plugin,
// without depending on a concrete driver type.
package webdriver
