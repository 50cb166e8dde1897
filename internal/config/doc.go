// The config package encapsulates configuration for the hintful diff
// tools.
//
// The configuration is an optional file of "key value" lines, with blank
// lines and lines starting with '#' ignored. It is found at $HINTFUL_CONFIG
// if that is set, otherwise at $HOME/lib/hintful/config. Commands override
// the path via the --config flag. A missing file means all defaults.
package config
