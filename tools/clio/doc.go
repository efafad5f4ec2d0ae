// Package cliotools exposes the Clio practice-management API as agent
// tools: contact management, matter lifecycle, and time and expense
// billing. All monetary values move through exact decimals and are
// rendered as fixed-point strings.
package cliotools
