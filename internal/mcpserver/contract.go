package mcpserver

// ReceiptFormatContract describes the canonical JSON document format that
// extraction pipelines and LLM consumers must follow when dropping
// receipts into the inbox.
const ReceiptFormatContract = `# Raidho Receipt Document Contract

Every JSON document dropped into the Raidho inbox MUST follow this structure.

## Structure

` + "```" + `json
{
  "id": "rcpt_abc123",
  "merchant": "Harmony Music School",
  "transactionDate": "2024-03-01",
  "contactPhone": "+1 555 0100",
  "contactEmail": "hello@harmony.example",
  "contactAddress": "12 High St",
  "items": [
    {
      "id": "rcpt_abc123_i0",
      "description": "Piano lessons x10",
      "category": "education",
      "quantity": 10,
      "totalPrice": 450,
      "details": {
        "teacherName": "Mr. Chen",
        "studentName": "Mia",
        "focus": "piano",
        "frequency": "weekly",
        "duration": "45 minutes",
        "startDate": "2024-03-04",
        "endDate": "2024-05-06",
        "daysOfWeek": ["Monday"],
        "times": ["4:30pm"],
        "venue": "Room 2"
      }
    }
  ]
}
` + "```" + `

## Rules

1. **File names** end with ` + "`" + `.json` + "`" + ` and use forward slashes.
2. **Dates** are local calendar dates in ` + "`" + `YYYY-MM-DD` + "`" + ` form. No time zones,
   no timestamps. Dates the extractor could not determine are omitted or empty.
3. **` + "`" + `merchant` + "`" + ` is required.** Everything else is best effort.
4. **Ids are optional.** Missing receipt and item ids are derived
   deterministically on ingest; supply them only to control identity across
   re-extractions.
5. **` + "`" + `category` + "`" + ` is one of** ` + "`" + `education` + "`" + `, ` + "`" + `service` + "`" + ` or ` + "`" + `general` + "`" + `.
   When omitted it is guessed from the description.
6. **` + "`" + `details` + "`" + ` fields are free text** exactly as extracted: ` + "`" + `frequency` + "`" + `
   may read "weekly", "every 2 weeks", "fortnightly", "monthly" and so on;
   ` + "`" + `duration` + "`" + ` may read "45 minutes" or "1.5 hours"; ` + "`" + `times` + "`" + ` entries may
   be 12-hour ("4:30pm") or 24-hour ("16:30") clock strings. Do NOT normalize
   them; the parser handles the variation.
7. **Service items** (repairs, alterations) use ` + "`" + `dropoffDate` + "`" + ` and
   ` + "`" + `pickupDate` + "`" + ` in details instead of a recurring schedule.
8. **Encoding** is UTF-8.
`
