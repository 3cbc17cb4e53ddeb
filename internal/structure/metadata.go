package structure

import "github.com/dgallion1/structex/internal/model"

// CollectMetadata recomputes a section's table/figure counters from its
// resolved references. Runs as a final pass so counts stay consistent no
// matter which pass attached the IDs.
func CollectMetadata(s *model.Section) {
	if s.Metadata == nil {
		s.Metadata = &model.Metadata{PageNumber: "0"}
	}
	s.Metadata.TableCount = len(s.References.Tables)
	s.Metadata.FigureCount = len(s.References.Figures)
	s.Metadata.HasTable = s.Metadata.TableCount > 0
	s.Metadata.HasFigure = s.Metadata.FigureCount > 0
}
