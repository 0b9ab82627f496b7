// Package project describes the on-disk layout of an albumus project
// directory: the in/ source tree, the out/ generated tree, and the project
// config override. It also owns clearing generated output and the per-project
// lock that keeps compile and clear from overlapping.
package project
