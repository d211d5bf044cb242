package landmark

import (
	"context"
	"errors"
	"image"
)

// Name identifies a body point in the 33-point pose topology
type Name string

const (
	Nose           Name = "nose"
	LeftEyeInner   Name = "left_eye_inner"
	LeftEye        Name = "left_eye"
	LeftEyeOuter   Name = "left_eye_outer"
	RightEyeInner  Name = "right_eye_inner"
	RightEye       Name = "right_eye"
	RightEyeOuter  Name = "right_eye_outer"
	LeftEar        Name = "left_ear"
	RightEar       Name = "right_ear"
	MouthLeft      Name = "mouth_left"
	MouthRight     Name = "mouth_right"
	LeftShoulder   Name = "left_shoulder"
	RightShoulder  Name = "right_shoulder"
	LeftElbow      Name = "left_elbow"
	RightElbow     Name = "right_elbow"
	LeftWrist      Name = "left_wrist"
	RightWrist     Name = "right_wrist"
	LeftPinky      Name = "left_pinky"
	RightPinky     Name = "right_pinky"
	LeftIndex      Name = "left_index"
	RightIndex     Name = "right_index"
	LeftThumb      Name = "left_thumb"
	RightThumb     Name = "right_thumb"
	LeftHip        Name = "left_hip"
	RightHip       Name = "right_hip"
	LeftKnee       Name = "left_knee"
	RightKnee      Name = "right_knee"
	LeftAnkle      Name = "left_ankle"
	RightAnkle     Name = "right_ankle"
	LeftHeel       Name = "left_heel"
	RightHeel      Name = "right_heel"
	LeftFootIndex  Name = "left_foot_index"
	RightFootIndex Name = "right_foot_index"
)

// Names lists the topology in model index order
var Names = []Name{
	Nose,
	LeftEyeInner, LeftEye, LeftEyeOuter,
	RightEyeInner, RightEye, RightEyeOuter,
	LeftEar, RightEar,
	MouthLeft, MouthRight,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftPinky, RightPinky,
	LeftIndex, RightIndex,
	LeftThumb, RightThumb,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

var knownNames = func() map[Name]struct{} {
	m := make(map[Name]struct{}, len(Names))
	for _, n := range Names {
		m[n] = struct{}{}
	}
	return m
}()

// ParseName reports whether s is part of the topology
func ParseName(s string) (Name, bool) {
	n := Name(s)
	_, ok := knownNames[n]
	return n, ok
}

// Point is a landmark in normalized image coordinates
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
}

// Set maps landmark names to their coordinates
type Set map[Name]Point

// Get returns the point for name
func (s Set) Get(name Name) (Point, bool) {
	p, ok := s[name]
	return p, ok
}

// Pose is one detection result: the landmarks plus the pixel size of the
// image they are normalized against
type Pose struct {
	Landmarks Set
	Width     int
	Height    int
}

// ErrNoPoseDetected signals that the model found no body in the image
var ErrNoPoseDetected = errors.New("no pose detected")

// Provider locates body landmarks in a decoded image.
// Implementations return ErrNoPoseDetected when nothing was found.
type Provider interface {
	Detect(ctx context.Context, img image.Image) (*Pose, error)
}
