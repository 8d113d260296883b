// Package site turns a content tree and its navigation config into an HTML site.
//
// Build is the single entry point: it loads the config, prepares a fresh
// output directory, copies static assets and renders every navigation entry
// through the theme. A build depends only on its inputs, so repeating it over
// unchanged sources yields the same tree.
package site
