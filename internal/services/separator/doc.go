// Package separator runs two-stem source separation with spleeter or demucs.
//
// Both engines leave their stems in the same layout:
//
//	{outputDir}/{input name without extension}/vocals.wav
//	{outputDir}/{input name without extension}/accompaniment.wav
//
// Demucs writes "no_vocals" into a model-named tree, so its output is staged in
// a hidden directory inside the stem directory and moved into place.
package separator
