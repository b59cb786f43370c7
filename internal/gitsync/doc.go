// Package gitsync commits and pushes the published dashboard data.
//
// A push failure never invalidates the local output; callers log it as a
// warning and keep the files already written.
package gitsync
