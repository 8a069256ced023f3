// Package env resolves {{variable}} placeholders in suite files.
//
// Values come from, in increasing precedence:
//   - the "variables" section of the config file
//   - a .env file
//   - --var flags
//
// {{$NAME}} reads the process environment instead.
package env
