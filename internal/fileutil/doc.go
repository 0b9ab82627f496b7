// Package fileutil holds small file replacement helpers shared by the tag
// writers and the settings store.
package fileutil
