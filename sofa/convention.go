// SPDX-License-Identifier: EPL-2.0

package sofa

// SimpleFreeFieldHRIR returns the schema for the SimpleFreeFieldHRIR
// convention: free-field head-related impulse responses measured with
// one emitter and two receivers (AES69, sofaconventions.org).
func SimpleFreeFieldHRIR() *Spec {
	return &Spec{
		Name: "SimpleFreeFieldHRIR",
		Attributes: []AttrSpec{
			{Name: "Conventions", Value: "SOFA"},
			{Name: "Version"},
			{Name: "SOFAConventions", Value: "SimpleFreeFieldHRIR"},
			{Name: "SOFAConventionsVersion"},
			{Name: "DataType", Value: "FIR"},
			{Name: "RoomType", Value: "free field"},
			{Name: "Title"},
			{Name: "DateCreated"},
			{Name: "DateModified"},
		},
		Dimensions: []DimSpec{
			{Name: "I", Size: 1},
			{Name: "C", Size: 3},
			{Name: "R", Size: 2},
			{Name: "E", Size: 1},
			{Name: "M"},
			{Name: "N"},
		},
		Variables: []VarSpec{
			{
				Name:   "ListenerPosition",
				Type:   TypeDouble,
				Shapes: [][]string{{"I", "C"}, {"M", "C"}},
				Units:  "metre",
			},
			{
				Name:     "ListenerUp",
				Type:     TypeDouble,
				Shapes:   [][]string{{"I", "C"}, {"M", "C"}},
				Optional: true,
			},
			{
				Name:     "ListenerView",
				Type:     TypeDouble,
				Shapes:   [][]string{{"I", "C"}, {"M", "C"}},
				Optional: true,
			},
			{
				Name:   "ReceiverPosition",
				Type:   TypeDouble,
				Shapes: [][]string{{"R", "C", "I"}, {"R", "C", "M"}},
				Units:  "metre",
			},
			{
				Name:   "SourcePosition",
				Type:   TypeDouble,
				Shapes: [][]string{{"M", "C"}},
				Units:  "degree, degree, metre",
			},
			{
				Name:   "EmitterPosition",
				Type:   TypeDouble,
				Shapes: [][]string{{"E", "C", "I"}, {"E", "C", "M"}},
				Units:  "metre",
			},
			{
				Name:   "Data.IR",
				Type:   TypeDouble,
				Shapes: [][]string{{"M", "R", "N"}},
			},
			{
				Name:   "Data.SamplingRate",
				Type:   TypeDouble,
				Shapes: [][]string{{"I"}},
				Units:  "hertz",
			},
			{
				Name:   "Data.Delay",
				Type:   TypeDouble,
				Shapes: [][]string{{"I", "R"}, {"M", "R"}},
			},
		},
	}
}
