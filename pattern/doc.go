// Package pattern decodes a TOML pattern file into calls against
// tissue's setup API, the way inmap/cmd/config.go decodes a whole run
// configuration with BurntSushi/toml before handing it to the solver.
package pattern
