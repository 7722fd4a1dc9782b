package mcpserver

// ItineraryFormatContract describes the JSON itinerary format that LLM
// consumers should follow when adding or updating activities.
const ItineraryFormatContract = `# Itinera Itinerary Format Contract

An itinerary is a single JSON document. Tools return it wrapped as
` + "`" + `{"itinerary": {...}, "revision": "..."}` + "`" + `.

## Structure

` + "```" + `json
{
  "id": "generated if absent",
  "destination": "Paris, France",
  "startDate": "2025-11-01",
  "endDate": "2025-11-03",
  "totalCost": 1500,
  "days": [
    {
      "dayNumber": 1,
      "date": "2025-11-01",
      "title": "Art and the Seine",
      "activities": [
        {
          "id": "generated if absent",
          "time": "09:00 AM",
          "name": "Louvre Museum",
          "description": "Timed entry, Denon wing first.",
          "location": "Rue de Rivoli, 75001 Paris",
          "coordinates": { "lat": 48.8606, "lng": 2.3376 },
          "duration": "3 hours",
          "cost": 22,
          "category": "museum"
        }
      ]
    }
  ]
}
` + "```" + `

## Rules

1. **` + "`" + `name` + "`" + ` is required** on every activity. Everything else is optional.
2. **` + "`" + `cost` + "`" + `** is a non-negative number in dollars. ` + "`" + `0` + "`" + ` means free;
   omit the field when the price is unknown.
3. **` + "`" + `category` + "`" + `** is one of: transport, accommodation, attraction, food,
   activity, shopping, museum, sightseeing.
4. **` + "`" + `coordinates` + "`" + `** need both ` + "`" + `lat` + "`" + ` (-90..90) and ` + "`" + `lng` + "`" + ` (-180..180).
   Activities without coordinates are listed but not mapped.
5. **Positions** in tool arguments are 0-based: ` + "`" + `day_index` + "`" + ` 0 is the first day.
   ` + "`" + `dayNumber` + "`" + ` inside the document is 1-based.
6. **Ids** are assigned by the server. Do not reuse an id from another activity.
7. **Dates** are ISO-8601 calendar dates (` + "`" + `YYYY-MM-DD` + "`" + `).
8. **Revisions** change on every edit. Pass the last seen ` + "`" + `revision` + "`" + ` to make an
   edit fail instead of overwriting a concurrent change.

## Patches

` + "`" + `update_activity` + "`" + ` takes a partial activity. Only the fields present change:

` + "```" + `json
{ "cost": 25, "time": "10:30 AM" }
` + "```" + `

## Import

` + "`" + `import_itinerary` + "`" + ` accepts a whole document in the format above, either from an
http(s) URL serving JSON or as ` + "`" + `data:application/json;base64,...` + "`" + `.
It replaces the saved itinerary.
`
