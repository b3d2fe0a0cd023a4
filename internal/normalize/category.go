package normalize

import "zonagamer/internal/domain"

// MaxCategoryDepth bounds tree mapping; deeper nodes keep empty children.
const MaxCategoryDepth = 16

var (
	categoryID       = Keys("id", "categoriaId", "categoryId", "_id")
	categoryName     = Keys("name", "nombreCategoria", "title")
	categoryChildren = Keys("children", "subcategories", "subcategorias")
)

// CategoryTree maps a list of category nodes recursively. A node that
// appears again on its own ancestor path is emitted without children.
func CategoryTree(raw any) []domain.Category {
	return categoryLevel(List(raw), 1, map[string]bool{})
}

func categoryLevel(nodes []Record, depth int, path map[string]bool) []domain.Category {
	out := make([]domain.Category, 0, len(nodes))
	for _, n := range nodes {
		c := domain.Category{
			ID:       idOrNew(n, categoryID),
			Name:     String(n, "", categoryName...),
			Children: []domain.Category{},
		}
		if depth < MaxCategoryDepth && !path[c.ID] {
			if kids, ok := FirstDefined(n, categoryChildren...); ok {
				path[c.ID] = true
				c.Children = categoryLevel(List(kids), depth+1, path)
				delete(path, c.ID)
			}
		}
		out = append(out, c)
	}
	return out
}
