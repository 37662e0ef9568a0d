// Package cli provides the luckyw command-line client.
//
// Each invocation runs one command against the API: register prompts for
// both handles and the password twice, login prints the session token,
// health reports server status. Passwords are read without echo and wiped
// from memory after use.
package cli
