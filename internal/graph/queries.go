package graph

const (
	SaveDocumentNodeQuery = `
		MERGE (d:Document {id: $id})
		SET d.title = $title,
			d.reporter = $reporter,
			d.volume = $volume,
			d.page = $page,
			d.year = $year,
			d.court = $court,
			d.normalized_key = $normalized_key
		RETURN d.id AS id
	`

	SaveCitesEdgeQuery = `
		MATCH (source:Document {id: $from_id})
		MATCH (target:Document {id: $to_id})
		MERGE (source)-[e:CITES {uuid: $uuid}]->(target)
		SET e.normalized_key = $normalized_key,
			e.confidence = $confidence,
			e.resolution_path = $resolution_path,
			e.notes = $notes,
			e.created_at = $created_at
		RETURN e.uuid AS uuid
	`

	DeleteDocumentEdgesQuery = `
		MATCH (source:Document {id: $from_id})-[e:CITES]->()
		DELETE e
	`
)
