// Package webassert is an expect plugin adding assertions for browser
// automation objects.
//
// It registers two types, WebElement and WebDriver, identified by the
// capability interfaces of package webdriver, and the assertions
//
//	<WebElement> to exist
//	<WebElement> to be visible
//	<WebElement> to contain text <string+>
//	<WebElement> to contain text <regexp>
//	<WebElement> to contain html <string+>
//	<WebElement> to contain html <regexp>
//	<WebElement> [not] to have attribute <string>
//	<WebElement> to have attribute <string> <string>
//	<WebDriver> to locate <Pending>
//
// When a screenshot directory is configured, every failing assertion saves a
// screenshot of the page and records its path in the failure.
package webassert
