package bonemap

import "sort"

// Version labels the table revision. Exported assets and any consumer parsing
// source-convention bone names must agree on this value.
const Version = "ybot-1"

// canonical maps mixamo-standard bone names to the canonical Y-Bot rig names.
// Y-Bot appends positional suffixes to every joint; animation curves authored
// against the plain mixamo names must be retargeted through this table.
var canonical = map[string]string{
	"mixamorig:Hips":             "mixamorig:Hips_01",
	"mixamorig:Spine":            "mixamorig:Spine_02",
	"mixamorig:Spine1":           "mixamorig:Spine1_03",
	"mixamorig:Spine2":           "mixamorig:Spine2_04",
	"mixamorig:Neck":             "mixamorig:Neck_05",
	"mixamorig:Head":             "mixamorig:Head_06",
	"mixamorig:HeadTop_End":      "mixamorig:HeadTop_End_07",
	"mixamorig:LeftShoulder":     "mixamorig:LeftShoulder_08",
	"mixamorig:LeftArm":          "mixamorig:LeftArm_09",
	"mixamorig:LeftForeArm":      "mixamorig:LeftForeArm_010",
	"mixamorig:LeftHand":         "mixamorig:LeftHand_011",
	"mixamorig:LeftHandThumb1":   "mixamorig:LeftHandThumb1_012",
	"mixamorig:LeftHandThumb2":   "mixamorig:LeftHandThumb2_013",
	"mixamorig:LeftHandThumb3":   "mixamorig:LeftHandThumb3_014",
	"mixamorig:LeftHandThumb4":   "mixamorig:LeftHandThumb4_015",
	"mixamorig:LeftHandIndex1":   "mixamorig:LeftHandIndex1_016",
	"mixamorig:LeftHandIndex2":   "mixamorig:LeftHandIndex2_017",
	"mixamorig:LeftHandIndex3":   "mixamorig:LeftHandIndex3_018",
	"mixamorig:LeftHandIndex4":   "mixamorig:LeftHandIndex4_019",
	"mixamorig:LeftHandMiddle1":  "mixamorig:LeftHandMiddle1_020",
	"mixamorig:LeftHandMiddle2":  "mixamorig:LeftHandMiddle2_021",
	"mixamorig:LeftHandMiddle3":  "mixamorig:LeftHandMiddle3_022",
	"mixamorig:LeftHandMiddle4":  "mixamorig:LeftHandMiddle4_023",
	"mixamorig:LeftHandRing1":    "mixamorig:LeftHandRing1_024",
	"mixamorig:LeftHandRing2":    "mixamorig:LeftHandRing2_025",
	"mixamorig:LeftHandRing3":    "mixamorig:LeftHandRing3_026",
	"mixamorig:LeftHandRing4":    "mixamorig:LeftHandRing4_027",
	"mixamorig:LeftHandPinky1":   "mixamorig:LeftHandPinky1_028",
	"mixamorig:LeftHandPinky2":   "mixamorig:LeftHandPinky2_029",
	"mixamorig:LeftHandPinky3":   "mixamorig:LeftHandPinky3_030",
	"mixamorig:LeftHandPinky4":   "mixamorig:LeftHandPinky4_031",
	"mixamorig:RightShoulder":    "mixamorig:RightShoulder_032",
	"mixamorig:RightArm":         "mixamorig:RightArm_033",
	"mixamorig:RightForeArm":     "mixamorig:RightForeArm_034",
	"mixamorig:RightHand":        "mixamorig:RightHand_035",
	"mixamorig:RightHandThumb1":  "mixamorig:RightHandThumb1_036",
	"mixamorig:RightHandThumb2":  "mixamorig:RightHandThumb2_037",
	"mixamorig:RightHandThumb3":  "mixamorig:RightHandThumb3_038",
	"mixamorig:RightHandThumb4":  "mixamorig:RightHandThumb4_039",
	"mixamorig:RightHandIndex1":  "mixamorig:RightHandIndex1_040",
	"mixamorig:RightHandIndex2":  "mixamorig:RightHandIndex2_041",
	"mixamorig:RightHandIndex3":  "mixamorig:RightHandIndex3_042",
	"mixamorig:RightHandIndex4":  "mixamorig:RightHandIndex4_043",
	"mixamorig:RightHandMiddle1": "mixamorig:RightHandMiddle1_044",
	"mixamorig:RightHandMiddle2": "mixamorig:RightHandMiddle2_045",
	"mixamorig:RightHandMiddle3": "mixamorig:RightHandMiddle3_046",
	"mixamorig:RightHandMiddle4": "mixamorig:RightHandMiddle4_047",
	"mixamorig:RightHandRing1":   "mixamorig:RightHandRing1_048",
	"mixamorig:RightHandRing2":   "mixamorig:RightHandRing2_049",
	"mixamorig:RightHandRing3":   "mixamorig:RightHandRing3_050",
	"mixamorig:RightHandRing4":   "mixamorig:RightHandRing4_051",
	"mixamorig:RightHandPinky1":  "mixamorig:RightHandPinky1_052",
	"mixamorig:RightHandPinky2":  "mixamorig:RightHandPinky2_053",
	"mixamorig:RightHandPinky3":  "mixamorig:RightHandPinky3_054",
	"mixamorig:RightHandPinky4":  "mixamorig:RightHandPinky4_055",
	"mixamorig:LeftUpLeg":        "mixamorig:LeftUpLeg_056",
	"mixamorig:LeftLeg":          "mixamorig:LeftLeg_057",
	"mixamorig:LeftFoot":         "mixamorig:LeftFoot_058",
	"mixamorig:LeftToeBase":      "mixamorig:LeftToeBase_059",
	"mixamorig:LeftToe_End":      "mixamorig:LeftToe_End_060",
	"mixamorig:RightUpLeg":       "mixamorig:RightUpLeg_061",
	"mixamorig:RightLeg":         "mixamorig:RightLeg_062",
	"mixamorig:RightFoot":        "mixamorig:RightFoot_063",
	"mixamorig:RightToeBase":     "mixamorig:RightToeBase_064",
	"mixamorig:RightToe_End":     "mixamorig:RightToe_End_065",
}

// Translate maps a source-convention bone name to its canonical name. Names
// outside the table pass through unchanged, which makes Translate total and
// idempotent: canonical names are never table keys.
func Translate(name string) string {
	if mapped, ok := canonical[name]; ok {
		return mapped
	}
	return name
}

// Entry is one row of the correspondence table.
type Entry struct {
	Source    string
	Canonical string
}

// Entries returns the table rows sorted by source name.
func Entries() []Entry {
	out := make([]Entry, 0, len(canonical))
	for source, target := range canonical {
		out = append(out, Entry{Source: source, Canonical: target})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Size returns the number of mapped bones.
func Size() int {
	return len(canonical)
}
