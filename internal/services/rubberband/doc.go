// Package rubberband provides the pitch-shifting engines.
//
// CLI drives the standalone rubberband executable: the input is first decoded
// to 24-bit PCM with ffmpeg (rubberband only reads what libsndfile supports)
// and the scratch file is removed afterwards. Filter uses ffmpeg's built-in
// rubberband audio filter in a single pass. Both write 24-bit PCM WAV.
package rubberband
