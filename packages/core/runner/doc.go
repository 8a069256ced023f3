// Package runner executes webspec suite files.
//
// It provides functionality for:
//   - Resolving {{variable}} placeholders
//   - Opening the suite's page through a driver
//   - Waiting for the page to be ready
//   - Filtering checks by name, tag, skip and only
//   - Sequential or parallel execution with bounded concurrency and an
//     optional start rate
//   - Collecting results, screenshots and timing percentiles
package runner
