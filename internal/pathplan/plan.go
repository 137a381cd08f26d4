package pathplan

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Stem names produced by the separator, in processing order.
const (
	StemVocals        = "vocals"
	StemAccompaniment = "accompaniment"
)

// Stems is the fixed order stems are transcoded in.
var Stems = []string{StemVocals, StemAccompaniment}

const (
	stemExt    = ".wav"
	pitchExt   = ".wav"
	ArchiveExt = ".zip"
)

// StagePlan is the input and output of one backend call. Skip is set when the
// call would be a no-op and the backend must not be invoked.
type StagePlan struct {
	Input  string
	Output string
	Skip   bool
}

// BaseName returns the filename of audioPath without directory or extension.
func BaseName(audioPath string) string {
	name := filepath.Base(audioPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// FormatSemitones renders a shift the way it appears in file names: 2, -3, 1.5.
func FormatSemitones(semitones float64) string {
	return strconv.FormatFloat(semitones, 'f', -1, 64)
}

// ArtifactName is the base name of job outputs: baseName, or baseName_{semitones}
// when a shift was applied.
func ArtifactName(baseName string, semitones float64) string {
	if semitones == 0 {
		return baseName
	}
	return baseName + "_" + FormatSemitones(semitones)
}

// PitchOutputPath is where the pitch-shifted WAV is written. Only meaningful
// when semitones is non-zero.
func PitchOutputPath(baseName, outputDir string, semitones float64) string {
	return filepath.Join(outputDir, baseName+"_"+FormatSemitones(semitones)+pitchExt)
}

// SplitOutputDir is the directory the separator writes stems into for an input
// named artifactName.
func SplitOutputDir(outputDir, artifactName string) string {
	return filepath.Join(outputDir, artifactName)
}

// StemPath is the separator's WAV output for stem inside splitDir.
func StemPath(splitDir, stem string) string {
	return filepath.Join(splitDir, stem+stemExt)
}

// StripExt removes the final extension of path, keeping its directory.
func StripExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// TranscodeOutputPath replaces the extension of input with the target format.
func TranscodeOutputPath(input string, format Format) string {
	return StripExt(input) + format.Ext()
}

// HasFormat reports whether path already carries format's extension.
func HasFormat(path string, format Format) bool {
	return format != FormatNone && strings.EqualFold(filepath.Ext(path), format.Ext())
}

// StemTranscode plans the conversion of one stem inside splitDir.
func StemTranscode(splitDir, stem string, format Format) StagePlan {
	input := StemPath(splitDir, stem)
	return StagePlan{
		Input:  input,
		Output: TranscodeOutputPath(input, format),
		Skip:   HasFormat(input, format),
	}
}

// FinalTranscode plans the single-file conversion used when no split was
// requested. The deliverable is named after the original input.
func FinalTranscode(input, outputDir, baseName string, format Format) StagePlan {
	output := filepath.Join(outputDir, baseName+format.Ext())
	return StagePlan{
		Input:  input,
		Output: output,
		Skip:   HasFormat(input, format),
	}
}

// ArchiveBase is the archive path without its .zip extension.
func ArchiveBase(outputDir, baseName string, semitones float64) string {
	return filepath.Join(outputDir, ArtifactName(baseName, semitones))
}

// ArchivePath is the final archive path.
func ArchivePath(outputDir, baseName string, semitones float64) string {
	return ArchiveBase(outputDir, baseName, semitones) + ArchiveExt
}

// JobPaths lists every path a job may write or remove under outputDir:
// the pitch output, the split directory, the archive, and the final
// transcode output when one is produced.
func JobPaths(audioPath, outputDir string, semitones float64, split bool, format Format) []string {
	baseName := BaseName(audioPath)
	current := audioPath
	var paths []string
	if semitones != 0 {
		current = PitchOutputPath(baseName, outputDir, semitones)
		paths = append(paths, current)
	}
	if split {
		return append(paths,
			SplitOutputDir(outputDir, BaseName(current)),
			ArchivePath(outputDir, baseName, semitones),
		)
	}
	if format != FormatNone {
		if plan := FinalTranscode(current, outputDir, baseName, format); !plan.Skip {
			paths = append(paths, plan.Output)
		}
	}
	return paths
}

// Covers reports whether writing or recursively removing target would touch
// path. Both must be cleaned absolute paths.
func Covers(target, path string) bool {
	if target == path {
		return true
	}
	rel, err := filepath.Rel(target, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
