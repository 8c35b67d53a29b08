package imodel

// SampleFixture returns a small building site: two discipline subjects, a
// hidden subject redirecting to an MEP partition, a private model, nested
// definition containers, and an assembly element with children.
func SampleFixture() Fixture {
	return Fixture{
		Subjects: []SubjectRow{
			{ID: "s-root", Label: "Site"},
			{ID: "s-arch", ParentID: "s-root", Label: "Architecture"},
			{ID: "s-struct", ParentID: "s-root", Label: "Structure"},
			{ID: "s-mep", ParentID: "s-root", Label: "MEP", TargetPartitionID: "m-mep", HideInHierarchy: true},
		},
		Models: []ModelRow{
			{ID: "m-arch", ParentID: "s-arch", Label: "Architectural Physical"},
			{ID: "m-struct", ParentID: "s-struct", Label: "Structural Physical"},
			{ID: "m-mep", ParentID: "s-root", Label: "MEP Physical"},
			{ID: "m-scratch", ParentID: "s-root", Label: "Scratch", IsPrivate: true},
		},
		DefinitionContainers: []DefinitionContainerRow{
			{ID: "dc-arch", Label: "Architectural Definitions"},
			{ID: "dc-openings", ParentID: "dc-arch", Label: "Openings"},
		},
		Categories: []CategoryRow{
			{ID: "c-walls", Label: "Walls", DefinitionContainerID: "dc-arch"},
			{ID: "c-doors", Label: "Doors", DefinitionContainerID: "dc-openings"},
			{ID: "c-beams", Label: "Beams"},
			{ID: "c-ducts", Label: "Ducts"},
		},
		SubCategories: []SubCategoryRow{
			{ID: "sc-walls-cut", CategoryID: "c-walls", Label: "Cut"},
			{ID: "sc-walls-projection", CategoryID: "c-walls", Label: "Projection"},
			{ID: "sc-beams", CategoryID: "c-beams", Label: "Beams"},
		},
		Elements: []ElementRow{
			{ID: "e-wall-1", ModelID: "m-arch", CategoryID: "c-walls", ClassName: "Arch:Wall", Label: "Wall 1"},
			{ID: "e-wall-2", ModelID: "m-arch", CategoryID: "c-walls", ClassName: "Arch:Wall", Label: "Wall 2"},
			{ID: "e-door-1", ModelID: "m-arch", CategoryID: "c-doors", ClassName: "Arch:Door", Label: "Door 1"},
			{ID: "e-door-1-frame", ModelID: "m-arch", CategoryID: "c-doors", ParentID: "e-door-1", ClassName: "Arch:DoorFrame", Label: "Frame"},
			{ID: "e-door-1-leaf", ModelID: "m-arch", CategoryID: "c-doors", ParentID: "e-door-1", ClassName: "Arch:DoorLeaf", Label: "Leaf"},
			{ID: "e-beam-1", ModelID: "m-struct", CategoryID: "c-beams", ClassName: "Struct:Beam", Label: "Beam 1"},
			{ID: "e-beam-2", ModelID: "m-struct", CategoryID: "c-beams", ClassName: "Struct:Beam", Label: "Beam 2"},
			{ID: "e-column-1", ModelID: "m-struct", CategoryID: "c-beams", ClassName: "Struct:Column", Label: "Column 1"},
			{ID: "e-duct-1", ModelID: "m-mep", CategoryID: "c-ducts", ClassName: "Mep:Duct", Label: "Duct 1"},
		},
	}
}
