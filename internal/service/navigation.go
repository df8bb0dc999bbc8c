package service

import (
	"strconv"

	"linguaclash/internal/lessons"
)

// Screen names the client screen a Navigation points to
type Screen string

const (
	ScreenExercise Screen = "exercise"
	ScreenPart     Screen = "part"
	ScreenFolders  Screen = "folders"
)

// Navigation tells the client where to go next. Scores earned so far in the
// part travel as score1, score2 and score3 params.
type Navigation struct {
	Screen Screen            `json:"screen"`
	Params map[string]string `json:"params,omitempty"`
}

func partParams(ref lessons.Ref) map[string]string {
	return map[string]string{
		"folder":  ref.Folder,
		"episode": ref.Episode,
		"part":    ref.Part,
	}
}

// toPart opens a part from its first exercise
func toPart(ref lessons.Ref) Navigation {
	return Navigation{Screen: ScreenPart, Params: partParams(ref)}
}

// toExercise opens exercise index of a run, carrying the scores so far
func toExercise(ref lessons.Ref, runID string, index int, scores []float64) Navigation {
	params := partParams(ref)
	params["run"] = runID
	params["index"] = strconv.Itoa(index)
	for i, s := range scores {
		params["score"+strconv.Itoa(i+1)] = strconv.FormatFloat(s, 'f', -1, 64)
	}
	return Navigation{Screen: ScreenExercise, Params: params}
}

func toFolders() Navigation {
	return Navigation{Screen: ScreenFolders}
}
