// Command songshift pitch shifts, splits, and transcodes songs.
//
// The modify command runs one job:
//
//	songshift modify --audio song.wav --pitch 2 --split --format mp3
//
// check reports missing tools, history lists past jobs, and config
// init/validate manage the TOML configuration file.
package main
