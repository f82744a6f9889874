package domain

import "time"

// GenerationKind enumerates the media categories a job can produce.
type GenerationKind string

const (
	GenerationKindImage GenerationKind = "image"
	GenerationKindVideo GenerationKind = "video"
)

// TaskType distinguishes purely prompt-driven generation from generation
// conditioned on a reference image. It is derived from the presence of a
// reference, never taken from user input.
type TaskType string

const (
	TaskTextToImage  TaskType = "text_to_image"
	TaskImageToImage TaskType = "image_to_image"
	TaskTextToVideo  TaskType = "text_to_video"
	TaskImageToVideo TaskType = "image_to_video"
)

// DeriveTaskType resolves the routing task from the job kind and whether a
// reference image accompanies the request.
func DeriveTaskType(kind GenerationKind, hasReference bool) TaskType {
	if kind == GenerationKindVideo {
		if hasReference {
			return TaskImageToVideo
		}
		return TaskTextToVideo
	}
	if hasReference {
		return TaskImageToImage
	}
	return TaskTextToImage
}

// GenerationJob is the persisted unit of work. Its id is assigned by the
// dispatcher before any provider call and never changes. OutputKey is empty
// while the job is pending and written exactly once by the first accepted
// terminal callback or synchronous response; a job that terminalizes without
// an output is deleted instead of being kept as a dangling record.
type GenerationJob struct {
	ID           string
	UserID       string
	Kind         GenerationKind
	Prompt       string
	Model        string
	Creativity   int
	Steps        int
	Seed         int
	AspectRatio  string
	ReferenceKey string
	MaskKey      string
	Duration     int
	OutputKey    string
	Metadata     map[string]any
	Bookmarked   bool
	Likes        int
	CreatedAt    time.Time
}

// Resolved reports whether the job has reached its successful terminal state.
func (j *GenerationJob) Resolved() bool {
	return j != nil && j.OutputKey != ""
}
