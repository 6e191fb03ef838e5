package callRepository

const (
	queryCreateCall = `
		INSERT INTO calls (
			title,
			description,
			audio_file_path,
			transcript,
			duration,
			created_at,
			updated_at
		) VALUES (
			:title,
			:description,
			:audio_file_path,
			:transcript,
			:duration,
			:created_at,
			:updated_at
		)
		RETURNING id
	`

	queryGetCallByID = `
		SELECT
			id,
			title,
			description,
			audio_file_path,
			transcript,
			duration,
			created_at,
			updated_at
		FROM calls
		WHERE id = :id
	`

	queryLockCallByIDPostgres = queryGetCallByID + `
		FOR UPDATE
	`

	queryGetAllCalls = `
		SELECT
			id,
			title,
			description,
			audio_file_path,
			transcript,
			duration,
			created_at,
			updated_at
		FROM calls
		ORDER BY created_at DESC, id DESC
		LIMIT :limit OFFSET :offset
	`

	queryCountAllCalls = `
		SELECT COUNT(*)
		FROM calls
	`

	queryUpdateCall = `
		UPDATE calls
		SET
			title = :title,
			description = :description,
			audio_file_path = :audio_file_path,
			transcript = :transcript,
			duration = :duration,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryDeleteCall = `
		DELETE FROM calls
		WHERE id = :id
	`

	queryCreateAnalysis = `
		INSERT INTO call_analyses (
			call_id,
			analysis_type,
			content,
			confidence_score,
			created_at
		) VALUES (
			:call_id,
			:analysis_type,
			:content,
			:confidence_score,
			:created_at
		)
		RETURNING id
	`

	queryGetAnalysesByCallID = `
		SELECT
			id,
			call_id,
			analysis_type,
			content,
			confidence_score,
			created_at
		FROM call_analyses
		WHERE call_id = :call_id
		ORDER BY id ASC
	`

	queryGetAnalysesByCallIDs = `
		SELECT
			id,
			call_id,
			analysis_type,
			content,
			confidence_score,
			created_at
		FROM call_analyses
		WHERE call_id IN (?)
		ORDER BY call_id ASC, id ASC
	`

	queryDeleteAnalysesByCallID = `
		DELETE FROM call_analyses
		WHERE call_id = :call_id
	`

	queryCreateObjection = `
		INSERT INTO objections (
			call_id,
			objection_text,
			objection_type,
			"timestamp",
			response_text,
			effectiveness_score,
			suggested_improvement,
			is_resolved,
			created_at
		) VALUES (
			:call_id,
			:objection_text,
			:objection_type,
			:timestamp,
			:response_text,
			:effectiveness_score,
			:suggested_improvement,
			:is_resolved,
			:created_at
		)
		RETURNING id
	`

	queryGetObjectionByID = `
		SELECT
			id,
			call_id,
			objection_text,
			objection_type,
			"timestamp",
			response_text,
			effectiveness_score,
			suggested_improvement,
			is_resolved,
			created_at
		FROM objections
		WHERE id = :id
	`

	queryGetObjectionsByCallID = `
		SELECT
			id,
			call_id,
			objection_text,
			objection_type,
			"timestamp",
			response_text,
			effectiveness_score,
			suggested_improvement,
			is_resolved,
			created_at
		FROM objections
		WHERE call_id = :call_id
		ORDER BY id ASC
	`

	queryGetObjectionsByCallIDs = `
		SELECT
			id,
			call_id,
			objection_text,
			objection_type,
			"timestamp",
			response_text,
			effectiveness_score,
			suggested_improvement,
			is_resolved,
			created_at
		FROM objections
		WHERE call_id IN (?)
		ORDER BY call_id ASC, id ASC
	`

	queryResolveObjection = `
		UPDATE objections
		SET
			response_text = :response_text,
			suggested_improvement = :suggested_improvement,
			effectiveness_score = :effectiveness_score,
			is_resolved = :is_resolved
		WHERE id = :id
	`

	queryDeleteObjectionsByCallID = `
		DELETE FROM objections
		WHERE call_id = :call_id
	`

	queryCallTotals = `
		SELECT
			COUNT(*) AS total_calls,
			COALESCE(SUM(duration), 0) AS total_duration
		FROM calls
	`

	queryObjectionTotals = `
		SELECT
			COUNT(*) AS total_objections,
			COALESCE(SUM(CASE WHEN is_resolved THEN 1 ELSE 0 END), 0) AS resolved_objections
		FROM objections
	`

	queryMostCommonObjectionType = `
		SELECT objection_type
		FROM objections
		WHERE objection_type IS NOT NULL
		GROUP BY objection_type
		ORDER BY COUNT(*) DESC, objection_type ASC
		LIMIT 1
	`

	queryObjectionStatsByType = `
		SELECT
			COALESCE(objection_type, 'unknown') AS objection_type,
			COUNT(*) AS objection_count,
			COALESCE(AVG(effectiveness_score), 0) AS average_effectiveness,
			COALESCE(SUM(CASE WHEN is_resolved THEN 1 ELSE 0 END), 0) AS resolved_count
		FROM objections
		GROUP BY COALESCE(objection_type, 'unknown')
		ORDER BY objection_count DESC, objection_type ASC
	`
)
